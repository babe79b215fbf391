package infrastructure

import (
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// DelegateLoadBalancer records that the network load balancer will be
// created by the cluster's cloud controller once the workload Service of
// type LoadBalancer is applied. Nothing is created here.
func (p *Provisioner) DelegateLoadBalancer(ctx *provisioning.Context) provisioning.StageResult {
	detail := map[string]any{
		"managed_by": "cloud-controller",
		"service":    ctx.Config.ServiceName,
		"namespace":  ctx.Config.Namespace,
		"node_port":  ctx.Config.NodePort,
	}
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:       provisioning.ResourceLoadBalancer,
		Name:       ctx.Config.ServiceName,
		State:      "delegated",
		Attributes: detail,
	})
	ctx.Observer.Printf("[%s] delegated to the cloud controller via Service %s/%s",
		StageLoadBalancer, ctx.Config.Namespace, ctx.Config.ServiceName)
	return provisioning.Success(detail)
}
