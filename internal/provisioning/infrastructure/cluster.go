package infrastructure

import (
	"errors"
	"fmt"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/labels"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
)

// ProvisionCluster creates the SKS cluster at the newest offered version and
// waits for it to become usable.
func (p *Provisioner) ProvisionCluster(ctx *provisioning.Context) provisioning.StageResult {
	versions, err := ctx.Cloud.ListClusterVersions(ctx)
	if err != nil {
		return provisioning.Failed(fmt.Errorf("failed to list cluster versions: %w", err))
	}
	if len(versions) == 0 {
		return provisioning.Failed(errors.New("no cluster versions offered in zone " + ctx.Config.Zone))
	}
	version := versions[0]

	name := naming.Cluster(ctx.Run.Slug, ctx.Run.Suffix)
	provisioning.LogResourceCreating(ctx.Observer, StageCluster, "cluster", name)

	spec := exoscale.ClusterSpec{
		Name:        name,
		Description: fmt.Sprintf("%s - %s", ctx.Config.ProjectName, ctx.Config.ServiceName),
		Version:     version,
		CNI:         ctx.Config.CNI,
		Level:       ctx.Config.Level,
		Labels:      labels.NewLabelBuilder(ctx.Run.Slug).WithRun(ctx.Run.Timestamp).WithRole(labels.RoleCluster).Build(),
	}

	cluster, existed, err := ensureCluster(ctx, spec)
	if err != nil {
		return provisioning.Failed(err)
	}
	if existed {
		provisioning.LogResourceExists(ctx.Observer, StageCluster, "cluster", name, cluster.ID)
	} else {
		provisioning.LogResourceCreated(ctx.Observer, StageCluster, "cluster", name, cluster.ID)
	}

	ctx.State.Cluster = cluster
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:  provisioning.ResourceCluster,
		Name:  name,
		ID:    cluster.ID,
		State: cluster.State,
		Attributes: map[string]any{
			"version":  version,
			"cni":      spec.CNI,
			"level":    spec.Level,
			"endpoint": cluster.Endpoint,
		},
	})
	return provisioning.Success(map[string]any{
		"id":      cluster.ID,
		"name":    name,
		"version": version,
		"state":   cluster.State,
	})
}

func ensureCluster(ctx *provisioning.Context, spec exoscale.ClusterSpec) (*exoscale.Cluster, bool, error) {
	op, err := ctx.Cloud.CreateCluster(ctx, spec)
	if err != nil {
		if !exoscale.IsAlreadyExists(err) {
			return nil, false, fmt.Errorf("failed to create cluster %s: %w", spec.Name, err)
		}
		cluster, lookupErr := findCluster(ctx, spec.Name)
		if lookupErr != nil {
			return nil, false, fmt.Errorf("cluster %s exists but could not be read: %w", spec.Name, lookupErr)
		}
		return cluster, true, nil
	}

	maxWait := ctx.Timeouts.ClusterCreate
	done, res := ctx.AwaitOperation(op, "cluster "+spec.Name, maxWait)
	if err := provisioning.WaitError("cluster "+spec.Name, res, maxWait); err != nil {
		return nil, false, err
	}

	id := done.ReferenceID
	if id == "" {
		found, err := findCluster(ctx, spec.Name)
		if err != nil {
			return nil, false, err
		}
		id = found.ID
	}
	cluster, err := ctx.Cloud.GetCluster(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cluster %s: %w", spec.Name, err)
	}
	if cluster.Name == "" {
		cluster.Name = spec.Name
	}
	if cluster.Version == "" {
		cluster.Version = spec.Version
	}
	return cluster, false, nil
}

func findCluster(ctx *provisioning.Context, name string) (*exoscale.Cluster, error) {
	clusters, err := ctx.Cloud.ListClusters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	for i := range clusters {
		if clusters[i].Name == name {
			return &clusters[i], nil
		}
	}
	return nil, fmt.Errorf("cluster %s: %w", name, exoscale.ErrNotFound)
}
