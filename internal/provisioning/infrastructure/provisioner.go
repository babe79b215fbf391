package infrastructure

import (
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// Stage names, as recorded in the report.
const (
	StageSecurityGroup  = "security_group"
	StageCluster        = "cluster"
	StageNodepool       = "nodepool"
	StageSecurityAttach = "security_attach"
	StageKubeconfig     = "kubeconfig"
	StageLoadBalancer   = "load_balancer"
)

const (
	securityGroupTimeout = 2 * time.Minute
	attachTimeout        = 2 * time.Minute
)

// Provisioner handles infrastructure provisioning.
type Provisioner struct{}

// NewProvisioner creates a new infrastructure provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// SecurityGroupStage creates the run's security group.
func (p *Provisioner) SecurityGroupStage() provisioning.Stage {
	return provisioning.Stage{Name: StageSecurityGroup, Fatal: true, Run: p.ProvisionSecurityGroup}
}

// ClusterStage creates the SKS cluster.
func (p *Provisioner) ClusterStage() provisioning.Stage {
	return provisioning.Stage{Name: StageCluster, Fatal: true, Run: p.ProvisionCluster}
}

// NodepoolStage creates the worker nodepool.
func (p *Provisioner) NodepoolStage() provisioning.Stage {
	return provisioning.Stage{Name: StageNodepool, Fatal: true, Run: p.ProvisionNodepool}
}

// SecurityAttachStage attaches the security group to each nodepool member.
func (p *Provisioner) SecurityAttachStage() provisioning.Stage {
	return provisioning.Stage{Name: StageSecurityAttach, Fatal: false, Run: p.AttachSecurityGroup}
}

// KubeconfigStage generates and stores the admin kubeconfig.
func (p *Provisioner) KubeconfigStage() provisioning.Stage {
	return provisioning.Stage{Name: StageKubeconfig, Fatal: true, Run: p.ProvisionKubeconfig}
}

// LoadBalancerStage records the load balancer delegation.
func (p *Provisioner) LoadBalancerStage() provisioning.Stage {
	return provisioning.Stage{Name: StageLoadBalancer, Fatal: false, Run: p.DelegateLoadBalancer}
}
