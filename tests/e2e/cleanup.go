//go:build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/destroy"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
)

// teardownProject removes everything whose name contains the E2E project
// slug. Errors are logged, not fatal, so cleanup always runs to the end.
func teardownProject(t *testing.T, cloud exoscale.ControlPlane, storage provisioning.ObjectStorage) destroy.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	engine := destroy.NewEngine(cloud, provisioning.NewConsoleObserver())
	engine.Storage = storage
	engine.Metrics = provisioning.NewMetrics()

	t.Logf("[Cleanup] Starting teardown for %s", cfg.ProjectName)
	res, err := engine.Run(ctx, destroy.Scope{
		Slug:      naming.Slugify(cfg.ProjectName),
		Namespace: cfg.Namespace,
	}, destroy.RunOptions{
		Force:      true,
		OutputsDir: cfg.OutputsDir,
		Project:    cfg.ProjectName,
		Zone:       cfg.Zone,
	})
	if err != nil {
		t.Logf("[Cleanup] Warning: teardown failed: %v", err)
		return res
	}
	for _, f := range res.Summary.Failures {
		t.Logf("  [Cleanup] Failed to delete %s %s: %s", f.Kind, f.Label(), f.Error)
	}
	for _, target := range res.Summary.ManualCleanup {
		t.Logf("  [Cleanup] Needs manual cleanup: %s %s", target.Kind, target.Label())
	}
	t.Logf("[Cleanup] Teardown %s", res.Status)
	return res
}
