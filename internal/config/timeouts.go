package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds every deadline, poll interval and retry budget used by
// deploy and teardown.
type Timeouts struct {
	ClusterCreate  time.Duration
	NodepoolCreate time.Duration

	NodeReady         time.Duration
	NodeReadyPoll     time.Duration
	PodReady          time.Duration
	PodReadyPoll      time.Duration
	DatabaseReady     time.Duration
	DatabaseReadyPoll time.Duration

	AttachRetries    int
	AttachRetryDelay time.Duration

	NodepoolDelete        time.Duration
	NodepoolDeleteRetries int
	NodepoolDeleteBackoff time.Duration
	ClusterDelete         time.Duration
	LoadBalancerDelete    time.Duration
	DatabaseDelete        time.Duration
	SGSettle              time.Duration
	SGRetry               time.Duration
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - EXODEPLOY_TIMEOUT_CLUSTER (default: 10m)
//   - EXODEPLOY_TIMEOUT_NODEPOOL (default: 10m)
//   - EXODEPLOY_TIMEOUT_NODES (default: 12m)
//   - EXODEPLOY_TIMEOUT_PODS (default: 5m)
//   - EXODEPLOY_TIMEOUT_DATABASE (default: 15m)
//   - EXODEPLOY_ATTACH_RETRIES (default: 5)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ClusterCreate:  parseDuration("EXODEPLOY_TIMEOUT_CLUSTER", 600*time.Second),
		NodepoolCreate: parseDuration("EXODEPLOY_TIMEOUT_NODEPOOL", 600*time.Second),

		NodeReady:         parseDuration("EXODEPLOY_TIMEOUT_NODES", 720*time.Second),
		NodeReadyPoll:     20 * time.Second,
		PodReady:          parseDuration("EXODEPLOY_TIMEOUT_PODS", 300*time.Second),
		PodReadyPoll:      15 * time.Second,
		DatabaseReady:     parseDuration("EXODEPLOY_TIMEOUT_DATABASE", 900*time.Second),
		DatabaseReadyPoll: 30 * time.Second,

		AttachRetries:    parseInt("EXODEPLOY_ATTACH_RETRIES", 5),
		AttachRetryDelay: 30 * time.Second,

		NodepoolDelete:        300 * time.Second,
		NodepoolDeleteRetries: 3,
		NodepoolDeleteBackoff: 30 * time.Second,
		ClusterDelete:         600 * time.Second,
		LoadBalancerDelete:    120 * time.Second,
		DatabaseDelete:        300 * time.Second,
		SGSettle:              10 * time.Second,
		SGRetry:               30 * time.Second,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
