package provisioning

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/config"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/postgres"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/registry"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/async"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/retry"
)

// ObjectStorage is the bucket surface used by deploy and teardown.
// Implemented by internal/platform/s3.Client.
type ObjectStorage interface {
	CreateBucket(ctx context.Context, name string) error
	BucketExists(ctx context.Context, name string) (bool, error)
	ListBuckets(ctx context.Context, substr string) ([]string, error)
	EmptyAndDeleteBucket(ctx context.Context, name string) error
	Endpoint() string
	Region() string
}

// KubeFactory builds a workload client from kubeconfig bytes.
type KubeFactory func(kubeconfig []byte) (k8s.Client, error)

// RunInfo identifies one run. Every generated name derives from it.
type RunInfo struct {
	ID        string
	Slug      string
	StartedAt time.Time
	// Timestamp names the run directory (YYYYMMDD_HHMMSS).
	Timestamp string
	// Suffix is appended to per-run resource names (HHMMSS).
	Suffix string
	Dir    string
}

// NewRunInfo derives run identity from the project name and start time.
func NewRunInfo(projectName, outputsDir string, now time.Time) RunInfo {
	ts := naming.RunTimestamp(now)
	return RunInfo{
		ID:        uuid.NewString(),
		Slug:      naming.Slugify(projectName),
		StartedAt: now,
		Timestamp: ts,
		Suffix:    naming.RunSuffix(now),
		Dir:       filepath.Join(outputsDir, ts),
	}
}

// DatabaseResult is what the database future resolves to.
type DatabaseResult struct {
	Name  string
	Type  string
	State string
	URI   string
	// Ready is true once the service reports running with a URI.
	Ready bool
}

// BucketResult is what the bucket future resolves to.
type BucketResult struct {
	Name     string
	Endpoint string
	Region   string
	Exists   bool
}

// RunState holds the results of earlier stages for later ones. Each field is
// written by exactly one stage.
type RunState struct {
	Image string

	SecurityGroup *exoscale.SecurityGroup
	InstanceType  *exoscale.InstanceType
	Cluster       *exoscale.Cluster
	Nodepool      *exoscale.Nodepool

	Kubeconfig     []byte
	KubeconfigPath string
	Kube           k8s.Client

	// Started after the security group stage, joined by the credential injector.
	Database *async.Future[DatabaseResult]
	Bucket   *async.Future[BucketResult]
}

// Context wraps all dependencies and state needed by a stage.
type Context struct {
	context.Context
	Config   *config.Config
	Timeouts *config.Timeouts
	Run      RunInfo
	State    *RunState
	Report   *Report
	Observer Observer

	Cloud       exoscale.ControlPlane
	Storage     ObjectStorage
	Registry    registry.Client
	KubeFactory KubeFactory
	DBPinger    postgres.Pinger

	// Sleep and Now drive every poll and retry loop. Tests replace them.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// NewContext creates a stage context with a fresh report and console observer.
func NewContext(ctx context.Context, cfg *config.Config, cloud exoscale.ControlPlane, run RunInfo) *Context {
	return &Context{
		Context:     ctx,
		Config:      cfg,
		Timeouts:    config.LoadTimeouts(),
		Run:         run,
		State:       &RunState{},
		Report:      NewReport(run.ID, cfg.ProjectName, cfg.Zone),
		Observer:    NewConsoleObserver(),
		Cloud:       cloud,
		KubeFactory: k8s.NewFromKubeconfig,
		Sleep:       retry.Sleep,
		Now:         time.Now,
	}
}

// WithContext returns a shallow copy of c that uses ctx for cancellation.
// Config, State and Report are shared with c.
func (c *Context) WithContext(ctx context.Context) *Context {
	cp := *c
	cp.Context = ctx
	return &cp
}

// PollOptions returns poll options bound to the context clock.
func (c *Context) PollOptions(interval, timeout time.Duration) poll.Options {
	return poll.Options{Interval: interval, Timeout: timeout, Sleep: c.Sleep, Now: c.Now}
}

// Handle wraps an operation for WaitForOperation using the context clock.
func (c *Context) Handle(op *exoscale.Operation, resource string, maxWait time.Duration) exoscale.OperationHandle {
	h := exoscale.NewHandle(op, resource, maxWait)
	h.Poll.Sleep = c.Sleep
	h.Poll.Now = c.Now
	return h
}

// Image returns the versioned image reference for the run.
func (c *Context) Image() string {
	if c.State.Image != "" {
		return c.State.Image
	}
	return naming.Image(c.Config.DockerHubUser, c.Config.ServiceName, c.Config.ServiceVersion)
}
