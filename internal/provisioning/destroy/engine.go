package destroy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/config"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/async"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/labels"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/retry"
)

// Scope selects what discovery looks for.
type Scope struct {
	// Slug is matched as a substring of every resource name.
	Slug string
	// Namespace is the workload namespace, looked up only when a Kube
	// client is available.
	Namespace string
	// ClusterIDs adds clusters whose name does not contain the slug.
	ClusterIDs []string
}

// Engine discovers and deletes a project's resources.
type Engine struct {
	Cloud    exoscale.ControlPlane
	Storage  provisioning.ObjectStorage
	Kube     k8s.Client
	Timeouts *config.Timeouts
	Observer provisioning.Observer
	Metrics  *provisioning.Metrics

	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// NewEngine returns an engine with default timeouts and a real clock.
// Storage and Kube are optional.
func NewEngine(cloud exoscale.ControlPlane, observer provisioning.Observer) *Engine {
	return &Engine{
		Cloud:    cloud,
		Timeouts: config.LoadTimeouts(),
		Observer: observer,
		Sleep:    retry.Sleep,
		Now:      time.Now,
	}
}

const phaseDiscover = "discover"

// Discover lists every resource kind and keeps those whose name contains
// the slug. Listing failures are returned together as *ListingError values
// in a *CleanupError after all kinds were tried, alongside what was found.
func (e *Engine) Discover(ctx context.Context, scope Scope) (Inventory, error) {
	return e.discover(ctx, scope, true)
}

func (e *Engine) discover(ctx context.Context, scope Scope, withNamespace bool) (Inventory, error) {
	if scope.Slug == "" {
		return nil, errors.New("discovery requires a non-empty slug")
	}
	inv := Inventory{}
	errs := &CleanupError{}

	if withNamespace && e.Kube != nil && scope.Namespace != "" {
		exists, err := e.Kube.NamespaceExists(ctx, scope.Namespace)
		switch {
		case err != nil:
			e.Observer.Printf("[%s] namespace lookup skipped: %v", phaseDiscover, err)
		case exists:
			inv.Add(Target{Kind: KindNamespace, Name: scope.Namespace})
		}
	}

	listers := e.listers(scope)
	found := make([][]Target, len(listers))
	failed := make([]error, len(listers))
	tasks := make([]async.Task, 0, len(listers))
	for i, l := range listers {
		tasks = append(tasks, async.Task{
			Name: string(l.kind),
			Func: func(ctx context.Context) error {
				targets, err := l.list(ctx)
				if err != nil {
					failed[i] = &ListingError{Kind: l.kind, Err: err}
					return failed[i]
				}
				found[i] = targets
				return nil
			},
		})
	}
	if err := async.RunParallel(ctx, tasks); err != nil {
		e.Observer.Printf("[%s] listing incomplete: %v", phaseDiscover, err)
	}
	for i := range listers {
		errs.Add(failed[i])
		inv.Add(found[i]...)
	}

	for _, k := range Order {
		e.Observer.Printf("[%s] %s: %d", phaseDiscover, k, len(inv[k]))
		for _, t := range inv[k] {
			e.Observer.Printf("[%s]   %s (%s)", phaseDiscover, t.Label(), t.ID)
		}
	}

	if errs.HasErrors() {
		return inv, errs
	}
	return inv, nil
}

type lister struct {
	kind Kind
	list func(ctx context.Context) ([]Target, error)
}

// listers returns one listing per provider API, in rank order.
func (e *Engine) listers(scope Scope) []lister {
	ls := []lister{{kind: KindDatabase, list: func(ctx context.Context) ([]Target, error) {
		dbs, err := e.Cloud.ListDatabases(ctx)
		if err != nil {
			return nil, err
		}
		var out []Target
		for i := range dbs {
			if matches(dbs[i].Name, scope.Slug) {
				db := dbs[i]
				out = append(out, Target{Kind: KindDatabase, Name: db.Name, ID: db.Name, Database: &db})
			}
		}
		return out, nil
	}}}

	if e.Storage != nil {
		ls = append(ls, lister{kind: KindBucket, list: func(ctx context.Context) ([]Target, error) {
			buckets, err := e.Storage.ListBuckets(ctx, scope.Slug)
			if err != nil {
				return nil, err
			}
			var out []Target
			for _, b := range buckets {
				if matches(b, scope.Slug) {
					out = append(out, Target{Kind: KindBucket, Name: b, ID: b})
				}
			}
			return out, nil
		}})
	}

	return append(ls,
		lister{kind: KindCluster, list: func(ctx context.Context) ([]Target, error) {
			clusters, err := e.Cloud.ListClusters(ctx)
			if err != nil {
				return nil, err
			}
			var out []Target
			for _, c := range clusters {
				if !e.selectCluster(c, scope) {
					continue
				}
				for _, np := range c.Nodepools {
					out = append(out, Target{Kind: KindNodepool, ID: np.ID, Name: np.Name, ClusterID: c.ID})
				}
				out = append(out, Target{Kind: KindCluster, ID: c.ID, Name: c.Name})
			}
			return out, nil
		}},
		lister{kind: KindLoadBalancer, list: func(ctx context.Context) ([]Target, error) {
			lbs, err := e.Cloud.ListLoadBalancers(ctx)
			if err != nil {
				return nil, err
			}
			var out []Target
			for _, lb := range lbs {
				if matches(lb.Name, scope.Slug) {
					out = append(out, Target{Kind: KindLoadBalancer, ID: lb.ID, Name: lb.Name})
				}
			}
			return out, nil
		}},
		lister{kind: KindSecurityGroup, list: func(ctx context.Context) ([]Target, error) {
			sgs, err := e.Cloud.ListSecurityGroups(ctx)
			if err != nil {
				return nil, err
			}
			var out []Target
			for _, sg := range sgs {
				if matches(sg.Name, scope.Slug) {
					out = append(out, Target{Kind: KindSecurityGroup, ID: sg.ID, Name: sg.Name})
				}
			}
			return out, nil
		}},
	)
}

// Verify re-runs discovery and returns what is left. The namespace is not
// re-checked because deleting it is asynchronous in the cluster.
func (e *Engine) Verify(ctx context.Context, scope Scope) (Inventory, error) {
	residual, err := e.discover(ctx, scope, false)
	for _, t := range residual.Ordered() {
		e.Metrics.ObserveTeardown(string(t.Kind), "residual")
	}
	return residual, err
}

// selectCluster keeps clusters whose name contains the slug and those
// passed by ID. A cluster passed by ID that lacks the project label is still
// selected, with a warning.
func (e *Engine) selectCluster(c exoscale.Cluster, scope Scope) bool {
	if matches(c.Name, scope.Slug) {
		return true
	}
	if !slices.Contains(scope.ClusterIDs, c.ID) {
		return false
	}
	if !labels.Matches(c.Labels, scope.Slug) {
		provisioning.LogWarning(e.Observer, phaseDiscover,
			fmt.Sprintf("cluster %s (%s) was selected by id but is not labelled %s=%s", c.Name, c.ID, labels.KeyProject, scope.Slug))
	}
	return true
}

func matches(name, slug string) bool {
	return name != "" && strings.Contains(name, slug)
}
