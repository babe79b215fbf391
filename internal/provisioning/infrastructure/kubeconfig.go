package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// Kubeconfig request parameters.
const (
	KubeconfigUser     = "admin"
	KubeconfigGroup    = "system:masters"
	KubeconfigTTL      = 24 * time.Hour
	KubeconfigFilename = "kubeconfig.yaml"
)

// ProvisionKubeconfig generates an admin kubeconfig, stores it owner-only in
// the run directory and opens the workload client.
func (p *Provisioner) ProvisionKubeconfig(ctx *provisioning.Context) provisioning.StageResult {
	cluster := ctx.State.Cluster
	if cluster == nil {
		return provisioning.Failed(errors.New("kubeconfig requires a cluster"))
	}

	data, err := ctx.Cloud.GenerateKubeconfig(ctx, cluster.ID, exoscale.KubeconfigRequest{
		User:   KubeconfigUser,
		Groups: []string{KubeconfigGroup},
		TTL:    KubeconfigTTL,
	})
	if err != nil {
		return provisioning.Failed(fmt.Errorf("failed to generate kubeconfig: %w", err))
	}
	if len(data) == 0 {
		return provisioning.Failed(errors.New("control plane returned an empty kubeconfig"))
	}

	if err := os.MkdirAll(ctx.Run.Dir, 0o755); err != nil {
		return provisioning.Failed(fmt.Errorf("failed to create run directory: %w", err))
	}
	path := filepath.Join(ctx.Run.Dir, KubeconfigFilename)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return provisioning.Failed(fmt.Errorf("failed to write kubeconfig: %w", err))
	}

	kube, err := ctx.KubeFactory(data)
	if err != nil {
		return provisioning.Failed(fmt.Errorf("failed to build kubernetes client: %w", err))
	}

	ctx.State.Kubeconfig = data
	ctx.State.KubeconfigPath = path
	ctx.State.Kube = kube
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:      provisioning.ResourceKubeconfig,
		Name:      KubeconfigFilename,
		State:     "written",
		DependsOn: map[string]string{provisioning.ResourceCluster: cluster.ID},
		Attributes: map[string]any{
			"path":  path,
			"user":  KubeconfigUser,
			"ttl_s": int64(KubeconfigTTL / time.Second),
		},
	})
	ctx.Observer.Printf("[%s] saved to %s", StageKubeconfig, path)
	return provisioning.Success(map[string]any{"path": path})
}
