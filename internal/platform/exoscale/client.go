package exoscale

import (
	"context"
	"time"
)

// OperationState is the lifecycle state of an asynchronous control-plane call.
type OperationState string

const (
	OperationPending OperationState = "pending"
	OperationSuccess OperationState = "success"
	OperationFailure OperationState = "failure"
	OperationTimeout OperationState = "timeout"
)

// Operation is the handle returned by every mutating call.
type Operation struct {
	ID          string
	State       OperationState
	ReferenceID string
	Message     string
}

// Terminal reports whether the operation will not change state again.
func (o *Operation) Terminal() bool {
	return o != nil && o.State != OperationPending && o.State != ""
}

type SecurityGroup struct {
	ID   string
	Name string
}

type InstanceType struct {
	ID     string
	Family string
	Size   string
	CPUs   int64
	Memory int64
}

// Nodepool is a node fleet. InstancePoolID points at the compute instances
// backing it.
type Nodepool struct {
	ID             string
	Name           string
	ClusterID      string
	InstancePoolID string
	State          string
	Size           int64
}

// Cluster is a managed Kubernetes control plane.
type Cluster struct {
	ID        string
	Name      string
	State     string
	Version   string
	Endpoint  string
	Labels    map[string]string
	Nodepools []Nodepool
}

type Instance struct {
	ID    string
	Name  string
	State string
}

// Database is a managed database service. Services are addressed by name.
type Database struct {
	Name  string
	Type  string
	State string
	URI   string
}

// DatabaseRunning is the state a database reports once it accepts connections.
const DatabaseRunning = "running"

type LoadBalancer struct {
	ID    string
	Name  string
	State string
	IP    string
}

// ClusterSpec describes a cluster to create.
type ClusterSpec struct {
	Name        string
	Description string
	Version     string
	CNI         string
	Level       string
	Labels      map[string]string
}

// NodepoolSpec describes a nodepool to create. SecurityGroupIDs is left empty
// by the provisioner; groups are attached per instance afterwards.
type NodepoolSpec struct {
	Name             string
	Description      string
	InstanceTypeID   string
	Size             int64
	DiskSizeGB       int64
	SecurityGroupIDs []string
	Labels           map[string]string
}

type DatabaseSpec struct {
	Name    string
	Plan    string
	Version string
}

type KubeconfigRequest struct {
	User   string
	Groups []string
	TTL    time.Duration
}

// OperationReader reads asynchronous operation state.
type OperationReader interface {
	GetOperation(ctx context.Context, id string) (*Operation, error)
}

// SecurityGroupManager manages security groups and their instance associations.
type SecurityGroupManager interface {
	CreateSecurityGroup(ctx context.Context, name, description string) (*Operation, error)
	ListSecurityGroups(ctx context.Context) ([]SecurityGroup, error)
	DeleteSecurityGroup(ctx context.Context, id string) (*Operation, error)
	AttachInstanceToSecurityGroup(ctx context.Context, securityGroupID, instanceID string) (*Operation, error)
}

// ClusterManager manages managed Kubernetes clusters.
type ClusterManager interface {
	ListInstanceTypes(ctx context.Context) ([]InstanceType, error)
	ListClusterVersions(ctx context.Context) ([]string, error)
	CreateCluster(ctx context.Context, spec ClusterSpec) (*Operation, error)
	GetCluster(ctx context.Context, id string) (*Cluster, error)
	ListClusters(ctx context.Context) ([]Cluster, error)
	DeleteCluster(ctx context.Context, id string) (*Operation, error)
	// GenerateKubeconfig returns the decoded kubeconfig document.
	GenerateKubeconfig(ctx context.Context, clusterID string, req KubeconfigRequest) ([]byte, error)
}

// NodepoolManager manages node fleets and reads their members.
type NodepoolManager interface {
	CreateNodepool(ctx context.Context, clusterID string, spec NodepoolSpec) (*Operation, error)
	GetNodepool(ctx context.Context, clusterID, nodepoolID string) (*Nodepool, error)
	DeleteNodepool(ctx context.Context, clusterID, nodepoolID string) (*Operation, error)
	ListInstancePoolMembers(ctx context.Context, instancePoolID string) ([]Instance, error)
}

// DatabaseManager manages managed database services.
type DatabaseManager interface {
	CreatePostgres(ctx context.Context, spec DatabaseSpec) (*Operation, error)
	GetPostgres(ctx context.Context, name string) (*Database, error)
	ListDatabases(ctx context.Context) ([]Database, error)
	DeleteDatabase(ctx context.Context, db Database) (*Operation, error)
}

// LoadBalancerManager lists and deletes network load balancers. Creation is
// left to the cluster's cloud controller.
type LoadBalancerManager interface {
	ListLoadBalancers(ctx context.Context) ([]LoadBalancer, error)
	DeleteLoadBalancer(ctx context.Context, id string) (*Operation, error)
}

// ControlPlane is the full capability set used by deploy and teardown.
type ControlPlane interface {
	OperationReader
	SecurityGroupManager
	ClusterManager
	NodepoolManager
	DatabaseManager
	LoadBalancerManager
}
