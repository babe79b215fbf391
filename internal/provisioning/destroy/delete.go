package destroy

import (
	"context"
	"fmt"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/retry"
)

const (
	phaseDelete = "teardown"

	resultDeleted = "deleted"
	resultFailed  = "failed"

	securityGroupDeleteWait = time.Minute
)

// Deleted records one target that is gone.
type Deleted struct {
	Target
	// AlreadyGone is true when the provider answered not-found.
	AlreadyGone bool `json:"already_gone,omitempty"`
	// Unconfirmed is true when deletion was accepted but did not finish in time.
	Unconfirmed bool `json:"unconfirmed,omitempty"`
}

// Failure records one target that could not be deleted.
type Failure struct {
	Target
	Error string `json:"error"`
}

// Summary is the result of DeleteAll.
type Summary struct {
	Deleted  []Deleted `json:"deleted"`
	Failures []Failure `json:"errors"`
	// ManualCleanup lists security groups still locked after the retry.
	ManualCleanup []Target `json:"manual_cleanup,omitempty"`
}

// Err returns the accumulated failures, or nil.
func (s Summary) Err() error {
	errs := &CleanupError{}
	for _, f := range s.Failures {
		errs.Add(fmt.Errorf("%s %s: %s", f.Kind, f.Label(), f.Error))
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// DeleteAll deletes inv in rank order. It never stops at a failed target;
// every failure is recorded in the summary.
func (e *Engine) DeleteAll(ctx context.Context, inv Inventory) Summary {
	var sum Summary
	var groups []Target
	for _, t := range inv.Ordered() {
		if t.Kind == KindSecurityGroup {
			groups = append(groups, t)
			continue
		}
		if err := ctx.Err(); err != nil {
			e.fail(&sum, t, err)
			continue
		}
		provisioning.LogResourceDeleting(e.Observer, phaseDelete, string(t.Kind), t.Label())
		res, err := e.deleteTarget(ctx, t)
		if err != nil {
			e.fail(&sum, t, err)
			continue
		}
		e.done(&sum, t, res)
	}
	if len(groups) > 0 {
		e.deleteSecurityGroups(ctx, groups, &sum)
	}
	return sum
}

func (e *Engine) deleteTarget(ctx context.Context, t Target) (exoscale.DeleteResult, error) {
	switch t.Kind {
	case KindNamespace:
		if e.Kube == nil {
			return exoscale.DeleteResult{}, fmt.Errorf("no kubeconfig available to delete namespace %s", t.Name)
		}
		if err := e.Kube.DeleteNamespace(ctx, t.Name); err != nil {
			return exoscale.DeleteResult{}, err
		}
		return exoscale.DeleteResult{Deleted: true, Outcome: poll.Completed}, nil

	case KindBucket:
		if e.Storage == nil {
			return exoscale.DeleteResult{}, fmt.Errorf("no object storage client to delete bucket %s", t.Name)
		}
		if err := e.Storage.EmptyAndDeleteBucket(ctx, t.Name); err != nil {
			return exoscale.DeleteResult{}, err
		}
		return exoscale.DeleteResult{Deleted: true, Outcome: poll.Completed}, nil

	case KindDatabase:
		db := exoscale.Database{Name: t.Name}
		if t.Database != nil {
			db = *t.Database
		}
		return e.execute(ctx, &exoscale.DeleteOperation{
			Kind:   string(t.Kind),
			Name:   t.Name,
			Delete: func(ctx context.Context) (*exoscale.Operation, error) { return e.Cloud.DeleteDatabase(ctx, db) },
			Wait:   e.wait(e.Timeouts.DatabaseDelete),
		})

	case KindNodepool:
		return e.execute(ctx, &exoscale.DeleteOperation{
			Kind: string(t.Kind),
			Name: t.Label(),
			Delete: func(ctx context.Context) (*exoscale.Operation, error) {
				return e.Cloud.DeleteNodepool(ctx, t.ClusterID, t.ID)
			},
			Retry: retry.Policy{
				MaxAttempts: e.Timeouts.NodepoolDeleteRetries,
				Backoff:     retry.Linear(e.Timeouts.NodepoolDeleteBackoff),
				Retryable:   exoscale.IsConflict,
				Sleep:       e.Sleep,
				OnRetry: func(attempt int, err error, delay time.Duration) {
					e.Observer.Printf("[%s] nodepool %s: conflict on attempt %d/%d, retrying in %v",
						phaseDelete, t.Label(), attempt, e.Timeouts.NodepoolDeleteRetries, delay)
				},
			},
			Wait: e.wait(e.Timeouts.NodepoolDelete),
		})

	case KindCluster:
		return e.execute(ctx, &exoscale.DeleteOperation{
			Kind:   string(t.Kind),
			Name:   t.Label(),
			Delete: func(ctx context.Context) (*exoscale.Operation, error) { return e.Cloud.DeleteCluster(ctx, t.ID) },
			Wait:   e.wait(e.Timeouts.ClusterDelete),
		})

	case KindLoadBalancer:
		return e.execute(ctx, &exoscale.DeleteOperation{
			Kind:   string(t.Kind),
			Name:   t.Label(),
			Delete: func(ctx context.Context) (*exoscale.Operation, error) { return e.Cloud.DeleteLoadBalancer(ctx, t.ID) },
			Wait:   e.wait(e.Timeouts.LoadBalancerDelete),
		})

	case KindSecurityGroup:
		return e.execute(ctx, &exoscale.DeleteOperation{
			Kind:   string(t.Kind),
			Name:   t.Label(),
			Delete: func(ctx context.Context) (*exoscale.Operation, error) { return e.Cloud.DeleteSecurityGroup(ctx, t.ID) },
			Wait:   e.wait(securityGroupDeleteWait),
		})
	}
	return exoscale.DeleteResult{}, fmt.Errorf("unknown target kind %q", t.Kind)
}

// deleteSecurityGroups waits for locks held by the cluster and load
// balancers to be released, tries every group, then retries the groups that
// were still in use once after a longer delay. Other failures are not retried.
func (e *Engine) deleteSecurityGroups(ctx context.Context, groups []Target, sum *Summary) {
	e.Observer.Printf("[%s] waiting %v before deleting security groups", phaseDelete, e.Timeouts.SGSettle)
	if err := e.Sleep(ctx, e.Timeouts.SGSettle); err != nil {
		for _, g := range groups {
			e.fail(sum, g, err)
		}
		return
	}

	var locked []Target
	for _, g := range groups {
		provisioning.LogResourceDeleting(e.Observer, phaseDelete, string(g.Kind), g.Label())
		res, err := e.deleteTarget(ctx, g)
		switch {
		case err != nil && exoscale.IsInUse(err):
			e.Observer.Printf("[%s] security group %s: %v, will retry", phaseDelete, g.Label(), err)
			locked = append(locked, g)
			continue
		case err != nil:
			e.fail(sum, g, err)
			continue
		}
		e.done(sum, g, res)
	}
	if len(locked) == 0 {
		return
	}

	e.Observer.Printf("[%s] retrying %d security group(s) in %v", phaseDelete, len(locked), e.Timeouts.SGRetry)
	if err := e.Sleep(ctx, e.Timeouts.SGRetry); err != nil {
		for _, g := range locked {
			e.fail(sum, g, err)
		}
		sum.ManualCleanup = append(sum.ManualCleanup, locked...)
		return
	}
	for _, g := range locked {
		res, err := e.deleteTarget(ctx, g)
		if err != nil {
			e.fail(sum, g, err)
			sum.ManualCleanup = append(sum.ManualCleanup, g)
			provisioning.LogWarning(e.Observer, phaseDelete,
				fmt.Sprintf("security group %s still locked, delete it manually in the Exoscale console", g.Label()))
			continue
		}
		e.done(sum, g, res)
	}
}

func (e *Engine) execute(ctx context.Context, op *exoscale.DeleteOperation) (exoscale.DeleteResult, error) {
	return op.Execute(ctx, e.Cloud)
}

func (e *Engine) wait(timeout time.Duration) poll.Options {
	return poll.Options{
		Interval: exoscale.DefaultOperationInterval,
		Timeout:  timeout,
		Sleep:    e.Sleep,
		Now:      e.Now,
	}
}

func (e *Engine) done(sum *Summary, t Target, res exoscale.DeleteResult) {
	d := Deleted{Target: t, AlreadyGone: res.AlreadyGone, Unconfirmed: res.Outcome == poll.TimedOut}
	sum.Deleted = append(sum.Deleted, d)
	e.Metrics.ObserveTeardown(string(t.Kind), resultDeleted)
	switch {
	case d.AlreadyGone:
		e.Observer.Printf("[%s] %s %s already gone", phaseDelete, t.Kind, t.Label())
	case d.Unconfirmed:
		provisioning.LogWarning(e.Observer, phaseDelete,
			fmt.Sprintf("%s %s deletion accepted but not confirmed in time", t.Kind, t.Label()))
	default:
		provisioning.LogResourceDeleted(e.Observer, phaseDelete, string(t.Kind), t.Label())
	}
}

func (e *Engine) fail(sum *Summary, t Target, err error) {
	sum.Failures = append(sum.Failures, Failure{Target: t, Error: err.Error()})
	e.Metrics.ObserveTeardown(string(t.Kind), resultFailed)
	provisioning.LogWarning(e.Observer, phaseDelete, fmt.Sprintf("%s %s: %v", t.Kind, t.Label(), err))
}
