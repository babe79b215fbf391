package testing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/config"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/registry"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
)

// RunStart is the fixed start time of fixture runs (suffix 143005).
var RunStart = time.Date(2026, 3, 14, 14, 30, 5, 0, time.UTC)

// StageFixture bundles a stage context with the doubles behind it.
type StageFixture struct {
	Ctx      *provisioning.Context
	Cloud    *exoscale.MockClient
	Kube     *k8s.MockClient
	Storage  *MockObjectStorage
	Registry *registry.MockClient
	Observer *RecordingObserver
	Clock    *poll.FakeClock
}

// NewStageContext returns a context whose run directory lives under
// t.TempDir and whose sleeps advance a fake clock instead of blocking.
func NewStageContext(t *testing.T, cfg *config.Config) *StageFixture {
	t.Helper()
	if cfg == nil {
		cfg = MinimalConfig()
	}
	cfg.OutputsDir = filepath.Join(t.TempDir(), "outputs")

	fx := &StageFixture{
		Cloud:    &exoscale.MockClient{},
		Kube:     &k8s.MockClient{},
		Storage:  NewMockObjectStorage(),
		Registry: &registry.MockClient{},
		Observer: NewRecordingObserver(),
		Clock:    poll.NewFakeClock(RunStart),
	}

	run := provisioning.NewRunInfo(cfg.ProjectName, cfg.OutputsDir, RunStart)
	ctx := provisioning.NewContext(TestContext(t), cfg, fx.Cloud, run)
	ctx.Timeouts = DefaultTimeouts()
	ctx.Observer = fx.Observer
	ctx.Storage = fx.Storage
	ctx.Registry = fx.Registry
	ctx.KubeFactory = func([]byte) (k8s.Client, error) { return fx.Kube, nil }
	ctx.Sleep = fx.Clock.Sleep
	ctx.Now = fx.Clock.Now
	fx.Ctx = ctx
	return fx
}

// DefaultTimeouts returns the production defaults without reading the
// environment.
func DefaultTimeouts() *config.Timeouts {
	return &config.Timeouts{
		ClusterCreate:         600 * time.Second,
		NodepoolCreate:        600 * time.Second,
		NodeReady:             720 * time.Second,
		NodeReadyPoll:         20 * time.Second,
		PodReady:              300 * time.Second,
		PodReadyPoll:          15 * time.Second,
		DatabaseReady:         900 * time.Second,
		DatabaseReadyPoll:     30 * time.Second,
		AttachRetries:         5,
		AttachRetryDelay:      30 * time.Second,
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

// Ready returns a control-plane operation that already succeeded.
func Ready(ref string) *exoscale.Operation {
	return &exoscale.Operation{ID: "op-" + ref, State: exoscale.OperationSuccess, ReferenceID: ref}
}

// Pending returns a control-plane operation that has not finished.
func Pending(ref string) *exoscale.Operation {
	return &exoscale.Operation{ID: "op-" + ref, State: exoscale.OperationPending, ReferenceID: ref}
}
