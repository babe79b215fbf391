package exoscale

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MockClient is a test double for ControlPlane. Unset Func fields return
// empty listings and operations that have already succeeded.
type MockClient struct {
	GetOperationFunc func(ctx context.Context, id string) (*Operation, error)

	// Security groups
	CreateSecurityGroupFunc           func(ctx context.Context, name, description string) (*Operation, error)
	ListSecurityGroupsFunc            func(ctx context.Context) ([]SecurityGroup, error)
	DeleteSecurityGroupFunc           func(ctx context.Context, id string) (*Operation, error)
	AttachInstanceToSecurityGroupFunc func(ctx context.Context, securityGroupID, instanceID string) (*Operation, error)

	// Clusters
	ListInstanceTypesFunc   func(ctx context.Context) ([]InstanceType, error)
	ListClusterVersionsFunc func(ctx context.Context) ([]string, error)
	CreateClusterFunc       func(ctx context.Context, spec ClusterSpec) (*Operation, error)
	GetClusterFunc          func(ctx context.Context, id string) (*Cluster, error)
	ListClustersFunc        func(ctx context.Context) ([]Cluster, error)
	DeleteClusterFunc       func(ctx context.Context, id string) (*Operation, error)
	GenerateKubeconfigFunc  func(ctx context.Context, clusterID string, req KubeconfigRequest) ([]byte, error)

	// Nodepools
	CreateNodepoolFunc          func(ctx context.Context, clusterID string, spec NodepoolSpec) (*Operation, error)
	GetNodepoolFunc             func(ctx context.Context, clusterID, nodepoolID string) (*Nodepool, error)
	DeleteNodepoolFunc          func(ctx context.Context, clusterID, nodepoolID string) (*Operation, error)
	ListInstancePoolMembersFunc func(ctx context.Context, instancePoolID string) ([]Instance, error)

	// Databases
	CreatePostgresFunc func(ctx context.Context, spec DatabaseSpec) (*Operation, error)
	GetPostgresFunc    func(ctx context.Context, name string) (*Database, error)
	ListDatabasesFunc  func(ctx context.Context) ([]Database, error)
	DeleteDatabaseFunc func(ctx context.Context, db Database) (*Operation, error)

	// Load balancers
	ListLoadBalancersFunc  func(ctx context.Context) ([]LoadBalancer, error)
	DeleteLoadBalancerFunc func(ctx context.Context, id string) (*Operation, error)

	mu    sync.Mutex
	calls []Call
	seq   atomic.Int64
}

// Call is one recorded method invocation.
type Call struct {
	Method string
	Args   []string
}

var _ ControlPlane = (*MockClient)(nil)

func (m *MockClient) record(method string, args ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Args: args})
}

// Calls returns recorded invocations of method, or all calls when method is empty.
func (m *MockClient) Calls(method string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how many times method was invoked.
func (m *MockClient) CallCount(method string) int {
	return len(m.Calls(method))
}

// SucceededOperation returns an operation that is already in the success state.
func (m *MockClient) SucceededOperation(referenceID string) *Operation {
	return &Operation{
		ID:          fmt.Sprintf("op-%d", m.seq.Add(1)),
		State:       OperationSuccess,
		ReferenceID: referenceID,
	}
}

func (m *MockClient) GetOperation(ctx context.Context, id string) (*Operation, error) {
	m.record("GetOperation", id)
	if m.GetOperationFunc != nil {
		return m.GetOperationFunc(ctx, id)
	}
	return &Operation{ID: id, State: OperationSuccess}, nil
}

func (m *MockClient) CreateSecurityGroup(ctx context.Context, name, description string) (*Operation, error) {
	m.record("CreateSecurityGroup", name)
	if m.CreateSecurityGroupFunc != nil {
		return m.CreateSecurityGroupFunc(ctx, name, description)
	}
	return m.SucceededOperation("sg-" + name), nil
}

func (m *MockClient) ListSecurityGroups(ctx context.Context) ([]SecurityGroup, error) {
	m.record("ListSecurityGroups")
	if m.ListSecurityGroupsFunc != nil {
		return m.ListSecurityGroupsFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) DeleteSecurityGroup(ctx context.Context, id string) (*Operation, error) {
	m.record("DeleteSecurityGroup", id)
	if m.DeleteSecurityGroupFunc != nil {
		return m.DeleteSecurityGroupFunc(ctx, id)
	}
	return m.SucceededOperation(id), nil
}

func (m *MockClient) AttachInstanceToSecurityGroup(ctx context.Context, securityGroupID, instanceID string) (*Operation, error) {
	m.record("AttachInstanceToSecurityGroup", securityGroupID, instanceID)
	if m.AttachInstanceToSecurityGroupFunc != nil {
		return m.AttachInstanceToSecurityGroupFunc(ctx, securityGroupID, instanceID)
	}
	return m.SucceededOperation(securityGroupID), nil
}

func (m *MockClient) ListInstanceTypes(ctx context.Context) ([]InstanceType, error) {
	m.record("ListInstanceTypes")
	if m.ListInstanceTypesFunc != nil {
		return m.ListInstanceTypesFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) ListClusterVersions(ctx context.Context) ([]string, error) {
	m.record("ListClusterVersions")
	if m.ListClusterVersionsFunc != nil {
		return m.ListClusterVersionsFunc(ctx)
	}
	return []string{"1.31.0"}, nil
}

func (m *MockClient) CreateCluster(ctx context.Context, spec ClusterSpec) (*Operation, error) {
	m.record("CreateCluster", spec.Name)
	if m.CreateClusterFunc != nil {
		return m.CreateClusterFunc(ctx, spec)
	}
	return m.SucceededOperation("cluster-" + spec.Name), nil
}

func (m *MockClient) GetCluster(ctx context.Context, id string) (*Cluster, error) {
	m.record("GetCluster", id)
	if m.GetClusterFunc != nil {
		return m.GetClusterFunc(ctx, id)
	}
	return &Cluster{ID: id, State: "running"}, nil
}

func (m *MockClient) ListClusters(ctx context.Context) ([]Cluster, error) {
	m.record("ListClusters")
	if m.ListClustersFunc != nil {
		return m.ListClustersFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) DeleteCluster(ctx context.Context, id string) (*Operation, error) {
	m.record("DeleteCluster", id)
	if m.DeleteClusterFunc != nil {
		return m.DeleteClusterFunc(ctx, id)
	}
	return m.SucceededOperation(id), nil
}

func (m *MockClient) GenerateKubeconfig(ctx context.Context, clusterID string, req KubeconfigRequest) ([]byte, error) {
	m.record("GenerateKubeconfig", clusterID, req.User)
	if m.GenerateKubeconfigFunc != nil {
		return m.GenerateKubeconfigFunc(ctx, clusterID, req)
	}
	return []byte("apiVersion: v1\nkind: Config\n"), nil
}

func (m *MockClient) CreateNodepool(ctx context.Context, clusterID string, spec NodepoolSpec) (*Operation, error) {
	m.record("CreateNodepool", clusterID, spec.Name, spec.InstanceTypeID)
	if m.CreateNodepoolFunc != nil {
		return m.CreateNodepoolFunc(ctx, clusterID, spec)
	}
	return m.SucceededOperation("pool-" + spec.Name), nil
}

func (m *MockClient) GetNodepool(ctx context.Context, clusterID, nodepoolID string) (*Nodepool, error) {
	m.record("GetNodepool", clusterID, nodepoolID)
	if m.GetNodepoolFunc != nil {
		return m.GetNodepoolFunc(ctx, clusterID, nodepoolID)
	}
	return &Nodepool{ID: nodepoolID, ClusterID: clusterID, State: "running"}, nil
}

func (m *MockClient) DeleteNodepool(ctx context.Context, clusterID, nodepoolID string) (*Operation, error) {
	m.record("DeleteNodepool", clusterID, nodepoolID)
	if m.DeleteNodepoolFunc != nil {
		return m.DeleteNodepoolFunc(ctx, clusterID, nodepoolID)
	}
	return m.SucceededOperation(nodepoolID), nil
}

func (m *MockClient) ListInstancePoolMembers(ctx context.Context, instancePoolID string) ([]Instance, error) {
	m.record("ListInstancePoolMembers", instancePoolID)
	if m.ListInstancePoolMembersFunc != nil {
		return m.ListInstancePoolMembersFunc(ctx, instancePoolID)
	}
	return nil, nil
}

func (m *MockClient) CreatePostgres(ctx context.Context, spec DatabaseSpec) (*Operation, error) {
	m.record("CreatePostgres", spec.Name, spec.Plan)
	if m.CreatePostgresFunc != nil {
		return m.CreatePostgresFunc(ctx, spec)
	}
	return m.SucceededOperation(spec.Name), nil
}

func (m *MockClient) GetPostgres(ctx context.Context, name string) (*Database, error) {
	m.record("GetPostgres", name)
	if m.GetPostgresFunc != nil {
		return m.GetPostgresFunc(ctx, name)
	}
	return &Database{Name: name, Type: "pg", State: DatabaseRunning, URI: "postgres://avnadmin@" + name + ":21699/defaultdb"}, nil
}

func (m *MockClient) ListDatabases(ctx context.Context) ([]Database, error) {
	m.record("ListDatabases")
	if m.ListDatabasesFunc != nil {
		return m.ListDatabasesFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) DeleteDatabase(ctx context.Context, db Database) (*Operation, error) {
	m.record("DeleteDatabase", db.Name)
	if m.DeleteDatabaseFunc != nil {
		return m.DeleteDatabaseFunc(ctx, db)
	}
	return m.SucceededOperation(db.Name), nil
}

func (m *MockClient) ListLoadBalancers(ctx context.Context) ([]LoadBalancer, error) {
	m.record("ListLoadBalancers")
	if m.ListLoadBalancersFunc != nil {
		return m.ListLoadBalancersFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) DeleteLoadBalancer(ctx context.Context, id string) (*Operation, error) {
	m.record("DeleteLoadBalancer", id)
	if m.DeleteLoadBalancerFunc != nil {
		return m.DeleteLoadBalancerFunc(ctx, id)
	}
	return m.SucceededOperation(id), nil
}
