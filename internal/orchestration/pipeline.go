package orchestration

import (
	"context"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/credentials"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/image"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/infrastructure"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/managed"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/workload"
)

// Pipeline orchestrates the deploy workflow.
type Pipeline struct {
	imageProvisioner    *image.Provisioner
	infraProvisioner    *infrastructure.Provisioner
	managedProvisioner  *managed.Provisioner
	workloadProvisioner *workload.Provisioner
	injector            *credentials.Injector
}

// NewPipeline creates a pipeline with the default provisioners.
func NewPipeline() *Pipeline {
	return &Pipeline{
		imageProvisioner:    image.NewProvisioner(),
		infraProvisioner:    infrastructure.NewProvisioner(),
		managedProvisioner:  managed.NewProvisioner(),
		workloadProvisioner: workload.NewProvisioner(),
		injector:            credentials.NewInjector(),
	}
}

// Stages returns the deploy stages in execution order.
func (p *Pipeline) Stages() []provisioning.Stage {
	return []provisioning.Stage{
		p.imageProvisioner.BuildStage(),
		p.imageProvisioner.PushStage(),
		p.infraProvisioner.SecurityGroupStage(),
		p.managedProvisioner.Stage(),
		p.infraProvisioner.ClusterStage(),
		p.infraProvisioner.NodepoolStage(),
		p.infraProvisioner.SecurityAttachStage(),
		p.infraProvisioner.KubeconfigStage(),
		p.infraProvisioner.LoadBalancerStage(),
		p.workloadProvisioner.NamespaceStage(),
		p.workloadProvisioner.PullSecretStage(),
		p.workloadProvisioner.NodesStage(),
		p.workloadProvisioner.ManifestsStage(),
		p.workloadProvisioner.PodsStage(),
		p.injector.Stage(),
	}
}

// Run executes every stage and writes the report into the run directory.
// Stages see a copy of ctx bound to a run-scoped context, so background
// services still running when Run returns are cancelled and ctx itself is
// never modified.
func (p *Pipeline) Run(ctx *provisioning.Context, metrics *provisioning.Metrics) provisioning.PipelineResult {
	runCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()
	run := ctx.WithContext(runCtx)

	rec := provisioning.NewRecorder(run.Run.Dir, metrics)
	rec.Now = run.Now
	seq := provisioning.NewSequencer(rec)
	seq.Now = run.Now
	return seq.Run(run, p.Stages())
}
