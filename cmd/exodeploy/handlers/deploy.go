package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/ui"
)

// DeployOptions are the deploy command flags.
type DeployOptions struct {
	ConfigPath string
	Auto       bool
	TUI        bool
}

// Deploy handles the deploy command.
//
// It loads the configuration, asks for confirmation unless Auto is set or
// the terminal is not interactive, runs the pipeline, and prints the summary.
// A fatal stage failure is returned as an error so the process exits 1.
func Deploy(ctx context.Context, opts DeployOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	run := provisioning.NewRunInfo(cfg.ProjectName, cfg.OutputsDir, now())
	printf("Project:  %s (slug %s)\n", cfg.ProjectName, run.Slug)
	printf("Zone:     %s\n", cfg.Zone)
	printf("Image:    %s/%s:%s\n", cfg.DockerHubUser, cfg.ServiceName, cfg.ServiceVersion)
	printf("Nodes:    %d x %s.%s\n", cfg.NodeCount, cfg.NodeTypeFamily, cfg.NodeTypeSize)
	printf("API key:  %s\n", cfg.Credentials.Redacted())
	printf("Outputs:  %s\n", run.Dir)

	interactive := isInteractive()
	if !opts.Auto && interactive {
		ok, err := confirm(ctx, "Start deployment?", fmt.Sprintf("Creates billable resources in %s", cfg.Zone))
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			printf("Deployment cancelled\n")
			return nil
		}
	}

	cloud, err := newCloudClient(cfg.Credentials.APIKey, cfg.Credentials.APISecret, cfg.Zone)
	if err != nil {
		return fmt.Errorf("failed to create Exoscale client: %w", err)
	}

	pCtx := newProvisioningContext(ctx, cfg, cloud, run)
	pCtx.Observer = newObserver()
	pCtx.KubeFactory = newKubeClient

	useTUI := opts.TUI && interactive
	var buildOutput io.Writer = stdout
	if useTUI {
		buildOutput = io.Discard
	}
	reg, err := newRegistryClient(buildOutput)
	if err != nil {
		return fmt.Errorf("failed to create registry client: %w", err)
	}
	pCtx.Registry = reg

	if cfg.ObjectStorage.Enabled {
		storage, err := newStorageClient(cfg.Zone, cfg.Credentials.APIKey, cfg.Credentials.APISecret)
		if err != nil {
			return fmt.Errorf("failed to create object storage client: %w", err)
		}
		pCtx.Storage = storage
	}
	if cfg.Database.Enabled {
		pCtx.DBPinger = newPinger()
	}

	pipeline := newPipeline()
	metrics := provisioning.NewMetrics()
	var result provisioning.PipelineResult
	if useTUI {
		result, err = runDeployTUI(ctx, cfg.ProjectName, cfg.Zone, stageNames(pipeline),
			func(runCtx context.Context, observer provisioning.Observer) provisioning.PipelineResult {
				pCtx.Context = runCtx
				pCtx.Observer = observer
				return pipeline.Run(pCtx, metrics)
			})
		if err != nil {
			return err
		}
	} else {
		result = pipeline.Run(pCtx, metrics)
	}

	printf("\n%s", ui.DeploySummary(pCtx.Report.Snapshot(), result.ReportPath))

	if result.ExitCode() != 0 {
		return fmt.Errorf("deployment aborted at stage %s: %w", result.FailedStage, result.Err)
	}
	return nil
}

func stageNames(p Pipeline) []string {
	stages := p.Stages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names
}
