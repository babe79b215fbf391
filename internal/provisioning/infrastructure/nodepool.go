package infrastructure

import (
	"errors"
	"fmt"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/labels"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
)

// ProvisionNodepool resolves the instance type and creates the nodepool
// without a security group.
func (p *Provisioner) ProvisionNodepool(ctx *provisioning.Context) provisioning.StageResult {
	cluster := ctx.State.Cluster
	if cluster == nil {
		return provisioning.Failed(errors.New("nodepool requires a cluster"))
	}

	types, err := ctx.Cloud.ListInstanceTypes(ctx)
	if err != nil {
		return provisioning.Failed(fmt.Errorf("failed to list instance types: %w", err))
	}
	sel, err := ResolveInstanceType(types, ctx.Config.NodeTypeFamily, ctx.Config.NodeTypeSize)
	if err != nil {
		return provisioning.Failed(err)
	}
	if sel.Upgraded {
		msg := fmt.Sprintf("instance size %s is not allowed for nodepools, using %s", sel.RequestedSize, sel.EffectiveSize)
		provisioning.LogWarning(ctx.Observer, StageNodepool, msg)
		ctx.Report.Warn("%s", msg)
	}
	if sel.Fallback {
		msg := fmt.Sprintf("no instance type matches %s.%s, falling back to %s.%s",
			ctx.Config.NodeTypeFamily, sel.EffectiveSize, sel.Type.Family, sel.Type.Size)
		provisioning.LogWarning(ctx.Observer, StageNodepool, msg)
		ctx.Report.Warn("%s", msg)
	}
	ctx.State.InstanceType = &sel.Type

	name := naming.Nodepool(ctx.Run.Slug, ctx.Run.Suffix)
	provisioning.LogResourceCreating(ctx.Observer, StageNodepool, "nodepool", name)

	spec := exoscale.NodepoolSpec{
		Name:           name,
		Description:    fmt.Sprintf("%s workers", ctx.Config.ServiceName),
		InstanceTypeID: sel.Type.ID,
		Size:           int64(ctx.Config.NodeCount),
		DiskSizeGB:     int64(ctx.Config.NodeDiskGB),
		Labels:         labels.NewLabelBuilder(ctx.Run.Slug).WithRun(ctx.Run.Timestamp).WithRole(labels.RoleWorkers).Build(),
	}
	op, err := ctx.Cloud.CreateNodepool(ctx, cluster.ID, spec)
	if err != nil {
		return provisioning.Failed(fmt.Errorf("failed to create nodepool %s: %w", name, err))
	}

	maxWait := ctx.Timeouts.NodepoolCreate
	done, res := ctx.AwaitOperation(op, "nodepool "+name, maxWait)
	if err := provisioning.WaitError("nodepool "+name, res, maxWait); err != nil {
		return provisioning.Failed(err)
	}

	pool, err := ctx.Cloud.GetNodepool(ctx, cluster.ID, done.ReferenceID)
	if err != nil {
		return provisioning.Failed(fmt.Errorf("failed to read nodepool %s: %w", name, err))
	}
	if pool.Name == "" {
		pool.Name = name
	}
	if pool.ClusterID == "" {
		pool.ClusterID = cluster.ID
	}
	if pool.Size == 0 {
		pool.Size = spec.Size
	}
	provisioning.LogResourceCreated(ctx.Observer, StageNodepool, "nodepool", name, pool.ID)

	ctx.State.Nodepool = pool
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:      provisioning.ResourceNodepool,
		Name:      name,
		ID:        pool.ID,
		State:     pool.State,
		DependsOn: map[string]string{provisioning.ResourceCluster: cluster.ID},
		Attributes: map[string]any{
			"instance_type":    sel.Type.Family + "." + sel.Type.Size,
			"requested_size":   sel.RequestedSize,
			"size":             pool.Size,
			"disk_gb":          spec.DiskSizeGB,
			"instance_pool_id": pool.InstancePoolID,
		},
	})
	return provisioning.Success(map[string]any{
		"id":               pool.ID,
		"name":             name,
		"instance_type":    sel.Type.Family + "." + sel.Type.Size,
		"size_upgraded":    sel.Upgraded,
		"type_fallback":    sel.Fallback,
		"instance_pool_id": pool.InstancePoolID,
	})
}
