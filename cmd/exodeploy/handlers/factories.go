package handlers

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/config"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/orchestration"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/postgres"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/registry"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/s3"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/destroy"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/ui"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/ui/tui"
)

// Pipeline runs the deploy stages.
type Pipeline interface {
	Stages() []provisioning.Stage
	Run(ctx *provisioning.Context, metrics *provisioning.Metrics) provisioning.PipelineResult
}

// Factory function variables - can be replaced in tests.
var (
	// loadConfig finds, loads, and validates the configuration file.
	loadConfig = func(path string) (*config.Config, error) {
		found, err := config.FindConfigFile(path)
		if err != nil {
			return nil, err
		}
		return config.Load(found)
	}

	// newCloudClient creates the zone-scoped Exoscale client.
	newCloudClient = func(apiKey, apiSecret, zone string) (exoscale.ControlPlane, error) {
		return exoscale.NewRealClient(apiKey, apiSecret, zone)
	}

	// newStorageClient creates the SOS client for the zone.
	newStorageClient = func(zone, apiKey, apiSecret string) (provisioning.ObjectStorage, error) {
		return s3.NewClient(s3.SOSEndpoint(zone), zone, apiKey, apiSecret)
	}

	// newRegistryClient connects to the local Docker daemon.
	newRegistryClient = func(out io.Writer) (registry.Client, error) {
		return registry.NewDockerClient(out)
	}

	// newKubeClient builds a workload client from kubeconfig bytes.
	newKubeClient = k8s.NewFromKubeconfig

	// newPinger creates the database reachability check.
	newPinger = func() postgres.Pinger { return postgres.NewPinger() }

	// newPipeline creates the deploy pipeline.
	newPipeline = func() Pipeline { return orchestration.NewPipeline() }

	// newProvisioningContext creates a new provisioning context.
	newProvisioningContext = provisioning.NewContext

	// newTeardownEngine creates the discovery and deletion engine.
	newTeardownEngine = destroy.NewEngine

	// newObserver creates the console observer.
	newObserver = func() provisioning.Observer { return provisioning.NewConsoleObserver() }

	// isInteractive reports whether prompts can be shown.
	isInteractive = func() bool { return ui.IsInteractive(os.Stdin) && ui.IsInteractive(os.Stdout) }

	// runDeployTUI runs the pipeline under the live dashboard.
	runDeployTUI = tui.RunDeployTUI

	// confirm asks the operator a yes/no question.
	confirm = ui.Confirm

	// now returns the run start time.
	now = time.Now

	// stdout receives summaries.
	stdout io.Writer = os.Stdout
)

func printf(format string, args ...any) {
	_, _ = fmt.Fprintf(stdout, format, args...)
}
