package config

import (
	"testing"
	"time"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	t.Setenv("EXODEPLOY_TIMEOUT_CLUSTER", "")
	t.Setenv("EXODEPLOY_TIMEOUT_NODES", "")
	t.Setenv("EXODEPLOY_ATTACH_RETRIES", "")

	timeouts := LoadTimeouts()

	if timeouts.ClusterCreate != 10*time.Minute {
		t.Errorf("Expected ClusterCreate default 10m, got %v", timeouts.ClusterCreate)
	}
	if timeouts.NodeReady != 12*time.Minute {
		t.Errorf("Expected NodeReady default 12m, got %v", timeouts.NodeReady)
	}
	if timeouts.NodeReadyPoll != 20*time.Second {
		t.Errorf("Expected NodeReadyPoll 20s, got %v", timeouts.NodeReadyPoll)
	}
	if timeouts.AttachRetries != 5 || timeouts.AttachRetryDelay != 30*time.Second {
		t.Errorf("Expected 5 attach retries every 30s, got %d every %v", timeouts.AttachRetries, timeouts.AttachRetryDelay)
	}
	if timeouts.SGSettle != 10*time.Second || timeouts.SGRetry != 30*time.Second {
		t.Errorf("Expected SG settle 10s and retry 30s, got %v and %v", timeouts.SGSettle, timeouts.SGRetry)
	}
}

func TestLoadTimeouts_EnvOverrides(t *testing.T) {
	t.Setenv("EXODEPLOY_TIMEOUT_CLUSTER", "15m")
	t.Setenv("EXODEPLOY_TIMEOUT_PODS", "not-a-duration")
	t.Setenv("EXODEPLOY_ATTACH_RETRIES", "2")

	timeouts := LoadTimeouts()

	if timeouts.ClusterCreate != 15*time.Minute {
		t.Errorf("Expected ClusterCreate 15m, got %v", timeouts.ClusterCreate)
	}
	if timeouts.PodReady != 5*time.Minute {
		t.Errorf("Expected invalid value to fall back to 5m, got %v", timeouts.PodReady)
	}
	if timeouts.AttachRetries != 2 {
		t.Errorf("Expected AttachRetries 2, got %d", timeouts.AttachRetries)
	}
}
