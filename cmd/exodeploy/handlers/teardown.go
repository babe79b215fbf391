package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/config"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/destroy"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/infrastructure"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/ui"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
)

// TeardownOptions are the teardown command flags.
type TeardownOptions struct {
	ConfigPath string
	Force      bool
	DryRun     bool
	ClusterIDs []string
}

// Teardown handles the teardown command.
//
// It discovers every resource whose name contains the project slug, asks
// for confirmation, deletes in dependency order, and verifies. Residual
// resources and kinds that could not be listed are reported, not returned
// as an error; only a failed cluster or security group listing makes the
// command exit 1.
func Teardown(ctx context.Context, opts TeardownOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	slug := naming.Slugify(cfg.ProjectName)
	printf("Tearing down %s (slug %s) in %s\n", cfg.ProjectName, slug, cfg.Zone)

	cloud, err := newCloudClient(cfg.Credentials.APIKey, cfg.Credentials.APISecret, cfg.Zone)
	if err != nil {
		return fmt.Errorf("failed to create Exoscale client: %w", err)
	}

	engine := newTeardownEngine(cloud, newObserver())
	engine.Metrics = provisioning.NewMetrics()
	if storage, err := newStorageClient(cfg.Zone, cfg.Credentials.APIKey, cfg.Credentials.APISecret); err != nil {
		log.Printf("Warning: bucket discovery skipped: %v", err)
	} else {
		engine.Storage = storage
	}
	engine.Kube = latestKubeClient(cfg)

	runOpts := destroy.RunOptions{
		DryRun:     opts.DryRun,
		Force:      opts.Force,
		OutputsDir: cfg.OutputsDir,
		Project:    cfg.ProjectName,
		Zone:       cfg.Zone,
	}
	if !opts.Force && isInteractive() {
		runOpts.Confirm = func(n int) (bool, error) {
			return confirm(ctx, fmt.Sprintf("Delete ALL %d %s resources?", n, slug), "This cannot be undone.")
		}
	}

	res, err := engine.Run(ctx, destroy.Scope{
		Slug:       slug,
		Namespace:  cfg.Namespace,
		ClusterIDs: opts.ClusterIDs,
	}, runOpts)
	if err != nil {
		return fmt.Errorf("teardown failed: %w", err)
	}

	printf("\n%s", ui.TeardownSummary(res))
	return nil
}

// latestKubeClient connects to the cluster of the newest run, if any, so the
// workload namespace can be deleted first.
func latestKubeClient(cfg *config.Config) k8s.Client {
	path, err := destroy.LatestKubeconfig(cfg.OutputsDir, infrastructure.KubeconfigFilename)
	if err != nil {
		if !errors.Is(err, destroy.ErrNoKubeconfig) {
			log.Printf("Warning: %v", err)
		}
		log.Printf("No kubeconfig found in %s, skipping namespace cleanup", cfg.OutputsDir)
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", path, err)
		return nil
	}
	client, err := newKubeClient(data)
	if err != nil {
		log.Printf("Warning: kubeconfig %s unusable: %v", path, err)
		return nil
	}
	log.Printf("Using kubeconfig: %s", path)
	return client
}
