package destroy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	testutil "github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/testing"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/labels"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
)

// world is a control plane whose listings shrink as resources are deleted.
type world struct {
	mu       sync.Mutex
	clusters []exoscale.Cluster
	lbs      []exoscale.LoadBalancer
	sgs      []exoscale.SecurityGroup
	dbs      []exoscale.Database
}

func (w *world) client() *exoscale.MockClient {
	m := &exoscale.MockClient{}
	m.ListClustersFunc = func(context.Context) ([]exoscale.Cluster, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		return slices.Clone(w.clusters), nil
	}
	m.ListLoadBalancersFunc = func(context.Context) ([]exoscale.LoadBalancer, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		return slices.Clone(w.lbs), nil
	}
	m.ListSecurityGroupsFunc = func(context.Context) ([]exoscale.SecurityGroup, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		return slices.Clone(w.sgs), nil
	}
	m.ListDatabasesFunc = func(context.Context) ([]exoscale.Database, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		return slices.Clone(w.dbs), nil
	}
	m.DeleteClusterFunc = func(_ context.Context, id string) (*exoscale.Operation, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.clusters = slices.DeleteFunc(w.clusters, func(c exoscale.Cluster) bool { return c.ID == id })
		return testutil.Ready(id), nil
	}
	m.DeleteNodepoolFunc = func(_ context.Context, clusterID, id string) (*exoscale.Operation, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i := range w.clusters {
			if w.clusters[i].ID == clusterID {
				w.clusters[i].Nodepools = slices.DeleteFunc(w.clusters[i].Nodepools,
					func(np exoscale.Nodepool) bool { return np.ID == id })
			}
		}
		return testutil.Ready(id), nil
	}
	m.DeleteLoadBalancerFunc = func(_ context.Context, id string) (*exoscale.Operation, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.lbs = slices.DeleteFunc(w.lbs, func(lb exoscale.LoadBalancer) bool { return lb.ID == id })
		return testutil.Ready(id), nil
	}
	m.DeleteSecurityGroupFunc = func(_ context.Context, id string) (*exoscale.Operation, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.sgs = slices.DeleteFunc(w.sgs, func(sg exoscale.SecurityGroup) bool { return sg.ID == id })
		return testutil.Ready(id), nil
	}
	m.DeleteDatabaseFunc = func(_ context.Context, db exoscale.Database) (*exoscale.Operation, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.dbs = slices.DeleteFunc(w.dbs, func(d exoscale.Database) bool { return d.Name == db.Name })
		return testutil.Ready(db.Name), nil
	}
	return m
}

func projectWorld() *world {
	return &world{
		clusters: []exoscale.Cluster{
			{ID: "c-1", Name: "proj-a-cluster-1", Nodepools: []exoscale.Nodepool{{ID: "np-1", Name: "proj-a-pool-1"}}},
			{ID: "c-9", Name: "proj-b-cluster-1"},
		},
		lbs: []exoscale.LoadBalancer{{ID: "lb-1", Name: "k8s-proj-a-web"}},
		sgs: []exoscale.SecurityGroup{
			{ID: "sg-1", Name: "proj-a-sg-1"},
			{ID: "sg-9", Name: "proj-b-sg-1"},
		},
		dbs: []exoscale.Database{{Name: "proj-a-db", Type: "pg"}},
	}
}

type engineFixture struct {
	engine   *Engine
	cloud    *exoscale.MockClient
	clock    *poll.FakeClock
	observer *testutil.RecordingObserver
}

func newEngine(t *testing.T, cloud *exoscale.MockClient) *engineFixture {
	t.Helper()
	clock := poll.NewFakeClock(time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))
	observer := testutil.NewRecordingObserver()
	e := NewEngine(cloud, observer)
	e.Timeouts = testutil.DefaultTimeouts()
	e.Sleep = clock.Sleep
	e.Now = clock.Now
	e.Metrics = provisioning.NewMetrics()
	return &engineFixture{engine: e, cloud: cloud, clock: clock, observer: observer}
}

func names(ts []Target) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}

func deleteCalls(m *exoscale.MockClient) []string {
	var out []string
	for _, c := range m.Calls("") {
		switch c.Method {
		case "DeleteDatabase", "DeleteNodepool", "DeleteCluster", "DeleteLoadBalancer", "DeleteSecurityGroup":
			out = append(out, c.Method)
		}
	}
	return out
}

func TestDiscover_SubstringMatchExcludesOtherProjects(t *testing.T) {
	t.Parallel()
	w := &world{
		clusters: []exoscale.Cluster{{ID: "c-1", Name: "proj-a-cluster-1"}},
		sgs: []exoscale.SecurityGroup{
			{ID: "sg-1", Name: "proj-a-sg-1"},
			{ID: "sg-2", Name: "proj-b-sg-1"},
		},
	}
	fx := newEngine(t, w.client())

	inv, err := fx.engine.Discover(context.Background(), Scope{Slug: "proj-a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"proj-a-cluster-1", "proj-a-sg-1"}, names(inv.Ordered()))
	assert.Equal(t, 2, inv.Count())
}

func TestDiscover_AllKinds(t *testing.T) {
	t.Parallel()
	fx := newEngine(t, projectWorld().client())
	storage := testutil.NewMockObjectStorage()
	storage.On("ListBuckets", mock.Anything, "proj-a").Return([]string{"proj-a-143005-assets"}, nil)
	fx.engine.Storage = storage
	fx.engine.Kube = &k8s.MockClient{
		NamespaceExistsFunc: func(context.Context, string) (bool, error) { return true, nil },
	}

	inv, err := fx.engine.Discover(context.Background(), Scope{Slug: "proj-a", Namespace: "web"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"web", "proj-a-db", "proj-a-143005-assets", "proj-a-pool-1",
		"proj-a-cluster-1", "k8s-proj-a-web", "proj-a-sg-1",
	}, names(inv.Ordered()))
	assert.Equal(t, "c-1", inv[KindNodepool][0].ClusterID)
	require.NotNil(t, inv[KindDatabase][0].Database)
	assert.Equal(t, 6, inv.CloudCount())
}

func TestDiscover_ClusterIDOverridesName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		clusterLabels map[string]string
		wantWarn      bool
	}{
		{name: "labelled for the project", clusterLabels: map[string]string{labels.KeyProject: "proj-a"}},
		{name: "labelled for another project", clusterLabels: map[string]string{labels.KeyProject: "proj-b"}, wantWarn: true},
		{name: "unlabelled", wantWarn: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := projectWorld()
			w.clusters[1].Labels = tt.clusterLabels
			fx := newEngine(t, w.client())

			inv, err := fx.engine.Discover(context.Background(), Scope{Slug: "proj-a", ClusterIDs: []string{"c-9"}})
			require.NoError(t, err)

			assert.Equal(t, []string{"proj-a-cluster-1", "proj-b-cluster-1"}, names(inv[KindCluster]))
			var warned bool
			for _, ev := range fx.observer.Events(provisioning.EventValidationWarning) {
				if strings.Contains(ev.Message, "selected by id") {
					warned = true
				}
			}
			assert.Equal(t, tt.wantWarn, warned)
		})
	}
}

func TestDiscover_ListingErrorsAreAggregated(t *testing.T) {
	t.Parallel()
	cloud := projectWorld().client()
	cloud.ListLoadBalancersFunc = func(context.Context) ([]exoscale.LoadBalancer, error) {
		return nil, errors.New("503")
	}
	cloud.ListDatabasesFunc = func(context.Context) ([]exoscale.Database, error) {
		return nil, errors.New("timeout")
	}
	fx := newEngine(t, cloud)

	inv, err := fx.engine.Discover(context.Background(), Scope{Slug: "proj-a"})
	require.Error(t, err)

	var cerr *CleanupError
	require.ErrorAs(t, err, &cerr)
	assert.Len(t, cerr.Errors, 2)
	var le *ListingError
	require.ErrorAs(t, cerr.Errors[0], &le)
	assert.Equal(t, KindDatabase, le.Kind)
	assert.Len(t, inv[KindCluster], 1, "other kinds are still discovered")
}

func TestDiscover_RequiresSlug(t *testing.T) {
	t.Parallel()
	fx := newEngine(t, &exoscale.MockClient{})
	_, err := fx.engine.Discover(context.Background(), Scope{})
	assert.Error(t, err)
}

func TestDeleteAll_RankOrder(t *testing.T) {
	t.Parallel()
	fx := newEngine(t, projectWorld().client())
	inv, err := fx.engine.Discover(context.Background(), Scope{Slug: "proj-a"})
	require.NoError(t, err)

	sum := fx.engine.DeleteAll(context.Background(), inv)

	require.NoError(t, sum.Err())
	assert.Equal(t, []string{
		"DeleteDatabase", "DeleteNodepool", "DeleteCluster", "DeleteLoadBalancer", "DeleteSecurityGroup",
	}, deleteCalls(fx.cloud))
	assert.Len(t, sum.Deleted, 5)
	assert.Empty(t, sum.ManualCleanup)
	assert.Equal(t, []time.Duration{10 * time.Second}, fx.clock.Sleeps(), "security groups wait for the settle delay")

	np := fx.cloud.Calls("DeleteNodepool")
	assert.Equal(t, []string{"c-1", "np-1"}, np[0].Args)
}

func TestDeleteAll_NodepoolConflictRetriesLinearly(t *testing.T) {
	t.Parallel()
	cloud := &exoscale.MockClient{}
	attempts := 0
	cloud.DeleteNodepoolFunc = func(context.Context, string, string) (*exoscale.Operation, error) {
		attempts++
		if attempts < 3 {
			return nil, fmt.Errorf("409: %w", exoscale.ErrConflict)
		}
		return testutil.Ready("np-1"), nil
	}
	fx := newEngine(t, cloud)
	inv := Inventory{}
	inv.Add(Target{Kind: KindNodepool, ID: "np-1", Name: "proj-a-pool-1", ClusterID: "c-1"})

	sum := fx.engine.DeleteAll(context.Background(), inv)

	require.NoError(t, sum.Err())
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{30 * time.Second, 60 * time.Second}, fx.clock.Sleeps())
}

func TestDeleteAll_NodepoolConflictExhausted(t *testing.T) {
	t.Parallel()
	cloud := &exoscale.MockClient{
		DeleteNodepoolFunc: func(context.Context, string, string) (*exoscale.Operation, error) {
			return nil, exoscale.ErrConflict
		},
	}
	fx := newEngine(t, cloud)
	inv := Inventory{}
	inv.Add(
		Target{Kind: KindNodepool, ID: "np-1", Name: "proj-a-pool-1", ClusterID: "c-1"},
		Target{Kind: KindCluster, ID: "c-1", Name: "proj-a-cluster-1"},
	)

	sum := fx.engine.DeleteAll(context.Background(), inv)

	assert.Equal(t, 3, cloud.CallCount("DeleteNodepool"))
	assert.Equal(t, 1, cloud.CallCount("DeleteCluster"), "the cluster is still attempted")
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, KindNodepool, sum.Failures[0].Kind)

	var cerr *CleanupError
	require.ErrorAs(t, sum.Err(), &cerr)
	assert.Len(t, cerr.Errors, 1)
}

func TestDeleteAll_NotFoundIsSuccess(t *testing.T) {
	t.Parallel()
	cloud := &exoscale.MockClient{
		DeleteLoadBalancerFunc: func(context.Context, string) (*exoscale.Operation, error) {
			return nil, fmt.Errorf("delete load balancer: %w", exoscale.ErrNotFound)
		},
		DeleteDatabaseFunc: func(context.Context, exoscale.Database) (*exoscale.Operation, error) {
			return nil, fmt.Errorf("delete database: %w", exoscale.ErrNotFound)
		},
	}
	fx := newEngine(t, cloud)
	inv := Inventory{}
	inv.Add(
		Target{Kind: KindLoadBalancer, ID: "lb-1", Name: "k8s-proj-a-web"},
		Target{Kind: KindDatabase, ID: "proj-a-143005-db", Name: "proj-a-143005-db"},
	)

	sum := fx.engine.DeleteAll(context.Background(), inv)

	require.NoError(t, sum.Err())
	require.Len(t, sum.Deleted, 2)
	for _, d := range sum.Deleted {
		assert.True(t, d.AlreadyGone, d.Name)
	}
}

func TestDeleteAll_SecurityGroupFailureNotInUseIsNotRetried(t *testing.T) {
	t.Parallel()
	calls := 0
	cloud := &exoscale.MockClient{
		DeleteSecurityGroupFunc: func(context.Context, string) (*exoscale.Operation, error) {
			calls++
			return nil, errors.New("403 forbidden: group e4090409-1a2b-4c3d-8e4f-409409409409 is in use")
		},
	}
	fx := newEngine(t, cloud)
	inv := Inventory{}
	inv.Add(Target{Kind: KindSecurityGroup, ID: "sg-1", Name: "proj-a-sg-1"})

	sum := fx.engine.DeleteAll(context.Background(), inv)

	assert.Equal(t, 1, calls)
	assert.Empty(t, sum.ManualCleanup)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, []time.Duration{10 * time.Second}, fx.clock.Sleeps())
}

func TestDeleteAll_SecurityGroupRetriedOnce(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		failures    int
		wantCalls   int
		wantManual  int
		wantDeleted int
	}{
		{"first attempt succeeds", 0, 1, 0, 1},
		{"locked then released", 1, 2, 0, 1},
		{"still locked", 2, 2, 1, 0},
	}
	inUse := fmt.Errorf("delete security group: %w", exoscale.ErrInUse)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			calls := 0
			cloud := &exoscale.MockClient{
				DeleteSecurityGroupFunc: func(context.Context, string) (*exoscale.Operation, error) {
					calls++
					if calls <= tt.failures {
						return nil, inUse
					}
					return testutil.Ready("sg-1"), nil
				},
			}
			fx := newEngine(t, cloud)
			inv := Inventory{}
			inv.Add(Target{Kind: KindSecurityGroup, ID: "sg-1", Name: "proj-a-sg-1"})

			sum := fx.engine.DeleteAll(context.Background(), inv)

			assert.Equal(t, tt.wantCalls, calls)
			assert.Len(t, sum.ManualCleanup, tt.wantManual)
			assert.Len(t, sum.Deleted, tt.wantDeleted)
			want := []time.Duration{10 * time.Second}
			if tt.failures > 0 {
				want = append(want, 30*time.Second)
			}
			assert.Equal(t, want, fx.clock.Sleeps())
		})
	}
}

func TestDeleteAll_NamespaceWithoutKubeFails(t *testing.T) {
	t.Parallel()
	fx := newEngine(t, &exoscale.MockClient{})
	inv := Inventory{}
	inv.Add(Target{Kind: KindNamespace, Name: "web"})

	sum := fx.engine.DeleteAll(context.Background(), inv)

	require.Len(t, sum.Failures, 1)
	assert.Contains(t, sum.Failures[0].Error, "no kubeconfig")
}

func TestRun_ZeroTargetsIsClean(t *testing.T) {
	t.Parallel()
	fx := newEngine(t, &exoscale.MockClient{})
	outputs := t.TempDir()
	prompted := false

	res, err := fx.engine.Run(context.Background(), Scope{Slug: "proj-a"}, RunOptions{
		OutputsDir: outputs,
		Confirm:    func(int) (bool, error) { prompted = true; return true, nil },
	})

	require.NoError(t, err)
	assert.Equal(t, StatusClean, res.Status)
	assert.False(t, prompted)
	assert.Empty(t, res.Summary.Deleted)
	assert.Empty(t, deleteCalls(fx.cloud))
	entries, _ := os.ReadDir(outputs)
	assert.Empty(t, entries)
}

func TestRun_DryRunDeletesNothing(t *testing.T) {
	t.Parallel()
	fx := newEngine(t, projectWorld().client())

	res, err := fx.engine.Run(context.Background(), Scope{Slug: "proj-a"}, RunOptions{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, StatusDryRun, res.Status)
	assert.Equal(t, 5, res.Inventory.Count())
	assert.Empty(t, deleteCalls(fx.cloud))
}

func TestRun_DeclinedPromptAborts(t *testing.T) {
	t.Parallel()
	fx := newEngine(t, projectWorld().client())
	var asked int

	res, err := fx.engine.Run(context.Background(), Scope{Slug: "proj-a"}, RunOptions{
		Confirm: func(n int) (bool, error) { asked = n; return false, nil },
	})

	require.NoError(t, err)
	assert.Equal(t, StatusAborted, res.Status)
	assert.Equal(t, 5, asked)
	assert.Empty(t, deleteCalls(fx.cloud))
}

func TestRun_ForceSkipsPrompt(t *testing.T) {
	t.Parallel()
	fx := newEngine(t, projectWorld().client())

	res, err := fx.engine.Run(context.Background(), Scope{Slug: "proj-a"}, RunOptions{
		Force:   true,
		Confirm: func(int) (bool, error) { return false, errors.New("must not be called") },
	})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
}

func TestRun_DeletesVerifiesAndWritesReport(t *testing.T) {
	t.Parallel()
	w := projectWorld()
	fx := newEngine(t, w.client())
	fx.engine.Metrics = provisioning.NewMetrics()
	outputs := t.TempDir()

	res, err := fx.engine.Run(context.Background(), Scope{Slug: "proj-a"}, RunOptions{
		Force:      true,
		OutputsDir: outputs,
		Project:    "Proj A",
		Zone:       "ch-gva-2",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Zero(t, res.Residual.Count())
	require.NotNil(t, res.Report)
	assert.True(t, res.Report.Clean)
	assert.Equal(t, filepath.Join(outputs, "teardown_report_20260314_150000.json"), res.ReportPath)
	assert.FileExists(t, res.ReportPath)
	prom, err := os.ReadFile(filepath.Join(outputs, "teardown_metrics_20260314_150000.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `exodeploy_teardown_resources_total{kind="cluster",result="deleted"} 1`)

	// proj-b is untouched.
	assert.Len(t, w.clusters, 1)
	assert.Equal(t, "proj-b-cluster-1", w.clusters[0].Name)
	assert.Equal(t, []exoscale.SecurityGroup{{ID: "sg-9", Name: "proj-b-sg-1"}}, w.sgs)
}

func TestRun_ResidualIsReportedNotFailed(t *testing.T) {
	t.Parallel()
	w := projectWorld()
	cloud := w.client()
	cloud.DeleteSecurityGroupFunc = func(context.Context, string) (*exoscale.Operation, error) {
		return nil, fmt.Errorf("delete security group: %w: %w", exoscale.ErrInUse, exoscale.ErrConflict)
	}
	fx := newEngine(t, cloud)

	res, err := fx.engine.Run(context.Background(), Scope{Slug: "proj-a"}, RunOptions{Force: true, OutputsDir: t.TempDir()})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, []string{"proj-a-sg-1"}, names(res.Residual.Ordered()))
	assert.False(t, res.Report.Clean)
	assert.Equal(t, []string{"proj-a-sg-1"}, names(res.Report.ManualCleanup))
	assert.Len(t, res.Report.Errors, 1)
}

func TestRun_CoreDiscoveryFailure(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		set  func(m *exoscale.MockClient)
	}{
		{name: "clusters", set: func(m *exoscale.MockClient) {
			m.ListClustersFunc = func(context.Context) ([]exoscale.Cluster, error) { return nil, errors.New("401") }
		}},
		{name: "security groups", set: func(m *exoscale.MockClient) {
			m.ListSecurityGroupsFunc = func(context.Context) ([]exoscale.SecurityGroup, error) { return nil, errors.New("401") }
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := projectWorld()
			cloud := w.client()
			tt.set(cloud)
			fx := newEngine(t, cloud)

			_, err := fx.engine.Run(context.Background(), Scope{Slug: "proj-a"}, RunOptions{Force: true})
			assert.ErrorContains(t, err, "discovery failed")
			assert.Len(t, w.dbs, 1, "nothing is deleted")
		})
	}
}

func TestRun_PartialDiscoveryContinues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		set        func(m *exoscale.MockClient, storage *testutil.MockObjectStorage)
		unverified []Kind
	}{
		{
			name: "bucket listing denied",
			set: func(_ *exoscale.MockClient, storage *testutil.MockObjectStorage) {
				storage.On("ListBuckets", mock.Anything, "proj-a").Return(nil, errors.New("AccessDenied"))
			},
			unverified: []Kind{KindBucket},
		},
		{
			name: "database and load balancer listings fail",
			set: func(m *exoscale.MockClient, storage *testutil.MockObjectStorage) {
				storage.On("ListBuckets", mock.Anything, "proj-a").Return([]string{}, nil)
				m.ListDatabasesFunc = func(context.Context) ([]exoscale.Database, error) { return nil, errors.New("503") }
				m.ListLoadBalancersFunc = func(context.Context) ([]exoscale.LoadBalancer, error) { return nil, errors.New("503") }
			},
			unverified: []Kind{KindDatabase, KindLoadBalancer},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := projectWorld()
			cloud := w.client()
			storage := testutil.NewMockObjectStorage()
			tt.set(cloud, storage)
			fx := newEngine(t, cloud)
			fx.engine.Storage = storage

			res, err := fx.engine.Run(context.Background(), Scope{Slug: "proj-a"}, RunOptions{Force: true, OutputsDir: t.TempDir()})

			require.NoError(t, err)
			assert.Equal(t, StatusCompleted, res.Status)
			assert.ElementsMatch(t, tt.unverified, res.Unverified)
			require.NotNil(t, res.Report)
			assert.ElementsMatch(t, tt.unverified, res.Report.Unverified)
			assert.False(t, res.Report.Clean)
			require.Len(t, w.clusters, 1)
			assert.Equal(t, "proj-b-cluster-1", w.clusters[0].Name)
			assert.Equal(t, []exoscale.SecurityGroup{{ID: "sg-9", Name: "proj-b-sg-1"}}, w.sgs)

			var warned []string
			for _, ev := range fx.observer.Events(provisioning.EventValidationWarning) {
				if strings.Contains(ev.Message, "not verified") {
					warned = append(warned, ev.Message)
				}
			}
			assert.Len(t, warned, len(tt.unverified))
			storage.AssertExpectations(t)
		})
	}
}

func TestLatestKubeconfig(t *testing.T) {
	t.Parallel()
	outputs := t.TempDir()
	testutil.WriteFiles(t, outputs, map[string]string{
		"20260313_090000/kubeconfig.yaml":        "old",
		"20260314_143005/kubeconfig.yaml":        "new",
		"20260315_080000/deployment_report.json": "{}",
		"teardown_report_20260314_150000.json":   "{}",
	})

	path, err := LatestKubeconfig(outputs, "kubeconfig.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputs, "20260314_143005", "kubeconfig.yaml"), path)

	_, err = LatestKubeconfig(filepath.Join(outputs, "missing"), "kubeconfig.yaml")
	assert.ErrorIs(t, err, ErrNoKubeconfig)
}

func TestInventory_OrderedByRank(t *testing.T) {
	t.Parallel()
	inv := Inventory{}
	inv.Add(
		Target{Kind: KindSecurityGroup, Name: "sg"},
		Target{Kind: KindCluster, Name: "cluster"},
		Target{Kind: KindNamespace, Name: "ns"},
		Target{Kind: KindNodepool, Name: "pool"},
	)
	assert.Equal(t, []string{"ns", "pool", "cluster", "sg"}, names(inv.Ordered()))
	assert.Less(t, KindNodepool.Rank(), KindCluster.Rank())
	assert.Less(t, KindCluster.Rank(), KindLoadBalancer.Rank())
	assert.Equal(t, len(Order), Kind("volume").Rank())
}
