package exoscale

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	v3 "github.com/exoscale/egoscale/v3"
	"github.com/exoscale/egoscale/v3/credentials"
)

// RealClient implements ControlPlane against the Exoscale v2 API of one zone.
type RealClient struct {
	client     *v3.Client
	zone       string
	endpoint   string
	httpClient *http.Client
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.httpClient = hc
	}
}

// WithEndpoint overrides the zone-derived API endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *RealClient) {
		c.endpoint = endpoint
	}
}

// ZoneEndpoint returns the API endpoint of a zone such as ch-gva-2.
func ZoneEndpoint(zone string) string {
	return fmt.Sprintf("https://api-%s.exoscale.com/v2", zone)
}

// NewRealClient creates a client for the given zone.
func NewRealClient(apiKey, apiSecret, zone string, opts ...ClientOption) (*RealClient, error) {
	c := &RealClient{zone: zone, endpoint: ZoneEndpoint(zone)}
	for _, opt := range opts {
		opt(c)
	}

	clientOpts := []v3.ClientOpt{
		v3.ClientOptWithEndpoint(v3.Endpoint(c.endpoint)),
		v3.ClientOptWithUserAgent("exodeploy"),
	}
	if c.httpClient != nil {
		clientOpts = append(clientOpts, v3.ClientOptWithHTTPClient(c.httpClient))
	}

	client, err := v3.NewClient(credentials.NewStaticCredentials(apiKey, apiSecret), clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create exoscale client: %w", err)
	}
	c.client = client
	return c, nil
}

// Zone returns the zone the client is bound to.
func (c *RealClient) Zone() string {
	return c.zone
}

var _ ControlPlane = (*RealClient)(nil)

// translate maps SDK errors onto the package sentinels by HTTP status class.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, v3.ErrNotFound), errors.Is(err, v3.ErrGone):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, v3.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, v3.ErrLocked), errors.Is(err, v3.ErrFailedDependency):
		return fmt.Errorf("%w: %w", ErrInUse, err)
	default:
		return err
	}
}

// translateCreate is translate for create calls, where a conflict means the
// name is already taken.
func translateCreate(err error) error {
	if errors.Is(err, v3.ErrConflict) {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	return translate(err)
}

// translateDelete is translate for delete calls, where a conflict means the
// resource is still referenced or locked.
func translateDelete(err error) error {
	if errors.Is(err, v3.ErrConflict) {
		return fmt.Errorf("%w: %w: %w", ErrInUse, ErrConflict, err)
	}
	return translate(err)
}

func parseID(kind, id string) (v3.UUID, error) {
	u, err := v3.ParseUUID(id)
	if err != nil {
		return u, fmt.Errorf("invalid %s id %q: %w", kind, id, err)
	}
	return u, nil
}

func toOperation(op *v3.Operation, err error) (*Operation, error) {
	return toOperationWith(translate, op, err)
}

func toOperationWith(tr func(error) error, op *v3.Operation, err error) (*Operation, error) {
	if err != nil {
		return nil, tr(err)
	}
	out := &Operation{
		ID:      op.ID.String(),
		State:   OperationState(op.State),
		Message: op.Message,
	}
	if op.Reference != nil {
		out.ReferenceID = op.Reference.ID.String()
	}
	return out, nil
}

func (c *RealClient) GetOperation(ctx context.Context, id string) (*Operation, error) {
	uid, err := parseID("operation", id)
	if err != nil {
		return nil, err
	}
	return toOperation(c.client.GetOperation(ctx, uid))
}

func (c *RealClient) CreateSecurityGroup(ctx context.Context, name, description string) (*Operation, error) {
	op, err := c.client.CreateSecurityGroup(ctx, v3.CreateSecurityGroupRequest{
		Name:        name,
		Description: description,
	})
	return toOperationWith(translateCreate, op, err)
}

func (c *RealClient) ListSecurityGroups(ctx context.Context) ([]SecurityGroup, error) {
	resp, err := c.client.ListSecurityGroups(ctx)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]SecurityGroup, 0, len(resp.SecurityGroups))
	for _, sg := range resp.SecurityGroups {
		out = append(out, SecurityGroup{ID: sg.ID.String(), Name: sg.Name})
	}
	return out, nil
}

func (c *RealClient) DeleteSecurityGroup(ctx context.Context, id string) (*Operation, error) {
	uid, err := parseID("security group", id)
	if err != nil {
		return nil, err
	}
	op, err := c.client.DeleteSecurityGroup(ctx, uid)
	return toOperationWith(translateDelete, op, err)
}

func (c *RealClient) AttachInstanceToSecurityGroup(ctx context.Context, securityGroupID, instanceID string) (*Operation, error) {
	sgID, err := parseID("security group", securityGroupID)
	if err != nil {
		return nil, err
	}
	iID, err := parseID("instance", instanceID)
	if err != nil {
		return nil, err
	}
	return toOperation(c.client.AttachInstanceToSecurityGroup(ctx, sgID, v3.AttachInstanceToSecurityGroupRequest{
		Instance: &v3.Instance{ID: iID},
	}))
}

func (c *RealClient) ListInstanceTypes(ctx context.Context) ([]InstanceType, error) {
	resp, err := c.client.ListInstanceTypes(ctx)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]InstanceType, 0, len(resp.InstanceTypes))
	for _, it := range resp.InstanceTypes {
		out = append(out, InstanceType{
			ID:     it.ID.String(),
			Family: string(it.Family),
			Size:   string(it.Size),
			CPUs:   it.Cpus,
			Memory: it.Memory,
		})
	}
	return out, nil
}

func (c *RealClient) ListClusterVersions(ctx context.Context) ([]string, error) {
	resp, err := c.client.ListSKSClusterVersions(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return resp.SKSClusterVersions, nil
}

func (c *RealClient) CreateCluster(ctx context.Context, spec ClusterSpec) (*Operation, error) {
	op, err := c.client.CreateSKSCluster(ctx, v3.CreateSKSClusterRequest{
		Name:        spec.Name,
		Description: &spec.Description,
		Version:     spec.Version,
		Cni:         v3.CreateSKSClusterRequestCni(spec.CNI),
		Level:       v3.CreateSKSClusterRequestLevel(spec.Level),
		Labels:      spec.Labels,
	})
	return toOperationWith(translateCreate, op, err)
}

func convertNodepool(clusterID string, np v3.SKSNodepool) Nodepool {
	out := Nodepool{
		ID:        np.ID.String(),
		Name:      np.Name,
		ClusterID: clusterID,
		State:     string(np.State),
		Size:      np.Size,
	}
	if np.InstancePool != nil {
		out.InstancePoolID = np.InstancePool.ID.String()
	}
	return out
}

func convertCluster(cl *v3.SKSCluster) Cluster {
	out := Cluster{
		ID:       cl.ID.String(),
		Name:     cl.Name,
		State:    string(cl.State),
		Version:  cl.Version,
		Endpoint: cl.Endpoint,
		Labels:   cl.Labels,
	}
	for _, np := range cl.Nodepools {
		out.Nodepools = append(out.Nodepools, convertNodepool(out.ID, np))
	}
	return out
}

func (c *RealClient) GetCluster(ctx context.Context, id string) (*Cluster, error) {
	uid, err := parseID("cluster", id)
	if err != nil {
		return nil, err
	}
	cl, err := c.client.GetSKSCluster(ctx, uid)
	if err != nil {
		return nil, translate(err)
	}
	out := convertCluster(cl)
	return &out, nil
}

func (c *RealClient) ListClusters(ctx context.Context) ([]Cluster, error) {
	resp, err := c.client.ListSKSClusters(ctx)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]Cluster, 0, len(resp.SKSClusters))
	for i := range resp.SKSClusters {
		out = append(out, convertCluster(&resp.SKSClusters[i]))
	}
	return out, nil
}

func (c *RealClient) DeleteCluster(ctx context.Context, id string) (*Operation, error) {
	uid, err := parseID("cluster", id)
	if err != nil {
		return nil, err
	}
	op, err := c.client.DeleteSKSCluster(ctx, uid)
	return toOperationWith(translateDelete, op, err)
}

func (c *RealClient) GenerateKubeconfig(ctx context.Context, clusterID string, req KubeconfigRequest) ([]byte, error) {
	uid, err := parseID("cluster", clusterID)
	if err != nil {
		return nil, err
	}
	kreq := v3.SKSKubeconfigRequest{User: req.User, Groups: req.Groups}
	if req.TTL > 0 {
		kreq.Ttl = int64(req.TTL.Seconds())
	}
	resp, err := c.client.GenerateSKSClusterKubeconfig(ctx, uid, kreq)
	if err != nil {
		return nil, translate(err)
	}
	decoded, err := base64.StdEncoding.DecodeString(resp.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to decode kubeconfig: %w", err)
	}
	return decoded, nil
}

func (c *RealClient) CreateNodepool(ctx context.Context, clusterID string, spec NodepoolSpec) (*Operation, error) {
	uid, err := parseID("cluster", clusterID)
	if err != nil {
		return nil, err
	}
	typeID, err := parseID("instance type", spec.InstanceTypeID)
	if err != nil {
		return nil, err
	}
	req := v3.CreateSKSNodepoolRequest{
		Name:         spec.Name,
		Description:  spec.Description,
		Size:         spec.Size,
		DiskSize:     spec.DiskSizeGB,
		InstanceType: &v3.InstanceType{ID: typeID},
		Labels:       spec.Labels,
	}
	for _, id := range spec.SecurityGroupIDs {
		sgID, err := parseID("security group", id)
		if err != nil {
			return nil, err
		}
		req.SecurityGroups = append(req.SecurityGroups, v3.SecurityGroup{ID: sgID})
	}
	op, err := c.client.CreateSKSNodepool(ctx, uid, req)
	return toOperationWith(translateCreate, op, err)
}

func (c *RealClient) GetNodepool(ctx context.Context, clusterID, nodepoolID string) (*Nodepool, error) {
	cid, err := parseID("cluster", clusterID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID("nodepool", nodepoolID)
	if err != nil {
		return nil, err
	}
	np, err := c.client.GetSKSNodepool(ctx, cid, pid)
	if err != nil {
		return nil, translate(err)
	}
	out := convertNodepool(clusterID, *np)
	return &out, nil
}

func (c *RealClient) DeleteNodepool(ctx context.Context, clusterID, nodepoolID string) (*Operation, error) {
	cid, err := parseID("cluster", clusterID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID("nodepool", nodepoolID)
	if err != nil {
		return nil, err
	}
	op, err := c.client.DeleteSKSNodepool(ctx, cid, pid)
	return toOperationWith(translateDelete, op, err)
}

func (c *RealClient) ListInstancePoolMembers(ctx context.Context, instancePoolID string) ([]Instance, error) {
	uid, err := parseID("instance pool", instancePoolID)
	if err != nil {
		return nil, err
	}
	pool, err := c.client.GetInstancePool(ctx, uid)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]Instance, 0, len(pool.Instances))
	for _, inst := range pool.Instances {
		out = append(out, Instance{ID: inst.ID.String(), Name: inst.Name, State: string(inst.State)})
	}
	return out, nil
}

func (c *RealClient) CreatePostgres(ctx context.Context, spec DatabaseSpec) (*Operation, error) {
	op, err := c.client.CreateDBAASServicePG(ctx, spec.Name, v3.CreateDBAASServicePGRequest{
		Plan:    spec.Plan,
		Version: v3.DBAASPGTargetVersions(spec.Version),
	})
	return toOperationWith(translateCreate, op, err)
}

func (c *RealClient) GetPostgres(ctx context.Context, name string) (*Database, error) {
	svc, err := c.client.GetDBAASServicePG(ctx, name)
	if err != nil {
		return nil, translate(err)
	}
	return &Database{
		Name:  string(svc.Name),
		Type:  "pg",
		State: string(svc.State),
		URI:   svc.URI,
	}, nil
}

func (c *RealClient) ListDatabases(ctx context.Context) ([]Database, error) {
	resp, err := c.client.ListDBAASServices(ctx)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]Database, 0, len(resp.DBAASServices))
	for _, svc := range resp.DBAASServices {
		out = append(out, Database{
			Name:  string(svc.Name),
			Type:  string(svc.Type),
			State: string(svc.State),
		})
	}
	return out, nil
}

func (c *RealClient) DeleteDatabase(ctx context.Context, db Database) (*Operation, error) {
	switch db.Type {
	case "pg", "":
		op, err := c.client.DeleteDBAASServicePG(ctx, db.Name)
		return toOperationWith(translateDelete, op, err)
	case "mysql":
		op, err := c.client.DeleteDBAASServiceMysql(ctx, db.Name)
		return toOperationWith(translateDelete, op, err)
	default:
		return nil, fmt.Errorf("unsupported database type %q for %s", db.Type, db.Name)
	}
}

func (c *RealClient) ListLoadBalancers(ctx context.Context) ([]LoadBalancer, error) {
	resp, err := c.client.ListLoadBalancers(ctx)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]LoadBalancer, 0, len(resp.LoadBalancers))
	for _, lb := range resp.LoadBalancers {
		item := LoadBalancer{ID: lb.ID.String(), Name: lb.Name, State: string(lb.State)}
		if lb.IP != nil {
			item.IP = lb.IP.String()
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *RealClient) DeleteLoadBalancer(ctx context.Context, id string) (*Operation, error) {
	uid, err := parseID("load balancer", id)
	if err != nil {
		return nil, err
	}
	op, err := c.client.DeleteLoadBalancer(ctx, uid)
	return toOperationWith(translateDelete, op, err)
}
