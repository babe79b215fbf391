package workload

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
)

// Readiness is the node count observed when the waiter stopped.
type Readiness struct {
	Desired int
	Ready   int
	Nodes   []k8s.NodeStatus
	Outcome poll.Outcome
	Err     error
}

// AllReady reports whether every desired node registered and is Ready.
func (r Readiness) AllReady() bool {
	return r.Outcome == poll.Completed && r.Ready >= r.Desired
}

// NodeWaiter polls the cluster until the desired number of nodes is Ready.
type NodeWaiter struct {
	Kube     k8s.Client
	Observer provisioning.Observer
	Poll     poll.Options
}

// WaitForReady returns when desired nodes are Ready or the poll deadline
// passes. Listing errors are treated as transient. Each iteration logs the
// full membership.
func (w *NodeWaiter) WaitForReady(ctx context.Context, desired int) Readiness {
	out := Readiness{Desired: desired}
	res := poll.Until(ctx, w.Poll, func(ctx context.Context) (bool, error) {
		nodes, err := w.Kube.ListNodes(ctx)
		if err != nil {
			w.Observer.Printf("[%s] listing nodes failed, retrying: %v", StageNodes, err)
			return false, nil
		}
		out.Nodes = nodes
		out.Ready = countReady(nodes)
		w.Observer.Printf("[%s] %d/%d Ready: %s", StageNodes, out.Ready, desired, membership(nodes))
		w.Observer.Progress(StageNodes, out.Ready, desired)
		return out.Ready >= desired, nil
	})
	out.Outcome = res.Outcome
	out.Err = res.Err
	return out
}

func countReady(nodes []k8s.NodeStatus) int {
	n := 0
	for _, node := range nodes {
		if node.Ready {
			n++
		}
	}
	return n
}

// membership formats nodes as name=Ready|NotReady, sorted by name.
func membership(nodes []k8s.NodeStatus) string {
	if len(nodes) == 0 {
		return "(none registered)"
	}
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		state := "NotReady"
		if n.Ready {
			state = "Ready"
		}
		parts = append(parts, n.Name+"="+state)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// WaitForNodes waits for node_count nodes. Running out of time is a partial
// outcome so the run can continue with the nodes it has.
func (p *Provisioner) WaitForNodes(ctx *provisioning.Context) provisioning.StageResult {
	if ctx.State.Kube == nil {
		return provisioning.Failed(errNoKubeClient)
	}
	waiter := &NodeWaiter{
		Kube:     ctx.State.Kube,
		Observer: ctx.Observer,
		Poll:     ctx.PollOptions(ctx.Timeouts.NodeReadyPoll, ctx.Timeouts.NodeReady),
	}
	r := waiter.WaitForReady(ctx, ctx.Config.NodeCount)

	detail := map[string]any{
		"desired":    r.Desired,
		"ready":      r.Ready,
		"registered": len(r.Nodes),
		"outcome":    r.Outcome.String(),
	}
	ctx.Report.UpdateResource(provisioning.ResourceNodepool, func(d *provisioning.ResourceDescriptor) {
		d.Attributes["ready_nodes"] = r.Ready
	})

	switch {
	case r.AllReady():
		return provisioning.Success(detail)
	case r.Outcome == poll.Cancelled:
		return provisioning.Failed(fmt.Errorf("node wait cancelled: %w", r.Err))
	default:
		msg := fmt.Sprintf("only %d/%d nodes Ready after %v, continuing", r.Ready, r.Desired, ctx.Timeouts.NodeReady)
		ctx.Report.Warn("%s", msg)
		return provisioning.Partial(errors.New(msg), detail)
	}
}
