package workload

import (
	"context"
	"errors"
	"fmt"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
)

const podRunning = "Running"

// VerifyPods waits until at least one pod in the namespace is Running.
func (p *Provisioner) VerifyPods(ctx *provisioning.Context) provisioning.StageResult {
	if ctx.State.Kube == nil {
		return provisioning.Failed(errNoKubeClient)
	}
	ns := ctx.Config.Namespace

	var pods []k8s.PodStatus
	running := 0
	res := poll.Until(ctx, ctx.PollOptions(ctx.Timeouts.PodReadyPoll, ctx.Timeouts.PodReady), func(c context.Context) (bool, error) {
		list, err := ctx.State.Kube.ListPods(c, ns)
		if err != nil {
			ctx.Observer.Printf("[%s] listing pods failed, retrying: %v", StagePods, err)
			return false, nil
		}
		pods = list
		running = countRunning(list)
		ctx.Observer.Printf("[%s] pods: %d total, %d Running", StagePods, len(list), running)
		return running > 0, nil
	})

	detail := map[string]any{
		"namespace": ns,
		"total":     len(pods),
		"running":   running,
	}
	ctx.Report.UpdateResource(provisioning.ResourceWorkload, func(d *provisioning.ResourceDescriptor) {
		d.Attributes["running_pods"] = running
	})

	switch res.Outcome {
	case poll.Completed:
		return provisioning.Success(detail)
	case poll.Cancelled:
		return provisioning.Failed(fmt.Errorf("pod verification cancelled: %w", res.Err))
	default:
		msg := fmt.Sprintf("no pods Running in %s after %v", ns, ctx.Timeouts.PodReady)
		ctx.Report.Warn("%s", msg)
		return provisioning.Partial(errors.New(msg), detail)
	}
}

func countRunning(pods []k8s.PodStatus) int {
	n := 0
	for _, p := range pods {
		if p.Phase == podRunning {
			n++
		}
	}
	return n
}
