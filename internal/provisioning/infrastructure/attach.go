package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/retry"
)

// AttachSecurityGroup attaches the run's security group to every member of
// the nodepool's instance pool. Failures never abort the run; members left
// unattached are reported for manual remediation.
func (p *Provisioner) AttachSecurityGroup(ctx *provisioning.Context) provisioning.StageResult {
	sg := ctx.State.SecurityGroup
	pool := ctx.State.Nodepool
	if sg == nil || pool == nil {
		return provisioning.Partial(errors.New("security group or nodepool missing"), map[string]any{
			"attached_count":   0,
			"member_count":     0,
			"needs_manual_fix": true,
		})
	}
	if pool.InstancePoolID == "" {
		return provisioning.Partial(errors.New("nodepool has no instance pool"), map[string]any{
			"attached_count":   0,
			"member_count":     0,
			"needs_manual_fix": true,
		})
	}

	members, err := ctx.Cloud.ListInstancePoolMembers(ctx, pool.InstancePoolID)
	if err != nil {
		return provisioning.Partial(fmt.Errorf("failed to list instance pool members: %w", err), map[string]any{
			"attached_count":   0,
			"member_count":     0,
			"needs_manual_fix": true,
		})
	}

	policy := retry.Policy{
		MaxAttempts: ctx.Timeouts.AttachRetries,
		Backoff:     retry.Constant(ctx.Timeouts.AttachRetryDelay),
		Retryable:   exoscale.IsConflict,
		Sleep:       ctx.Sleep,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			ctx.Observer.Printf("[%s] attempt %d conflicted, retrying in %v: %v", StageSecurityAttach, attempt, delay, err)
		},
	}

	attached := 0
	var failures []error
	for _, m := range members {
		err := retry.Do(ctx, policy, func(c context.Context) error {
			op, err := ctx.Cloud.AttachInstanceToSecurityGroup(c, sg.ID, m.ID)
			if err != nil {
				return err
			}
			_, res := ctx.AwaitOperation(op, "attach "+m.Name, attachTimeout)
			return provisioning.WaitError("attach "+m.Name, res, attachTimeout)
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("instance %s: %w", m.ID, err))
			provisioning.LogWarning(ctx.Observer, StageSecurityAttach, fmt.Sprintf("could not attach %s: %v", m.ID, err))
			continue
		}
		attached++
		ctx.Observer.Printf("[%s] attached %s to %s", StageSecurityAttach, sg.Name, m.Name)
	}

	needsFix := attached < len(members) || len(members) == 0
	detail := map[string]any{
		"security_group":   sg.ID,
		"attached_count":   attached,
		"member_count":     len(members),
		"needs_manual_fix": needsFix,
	}
	ctx.Report.UpdateResource(provisioning.ResourceSecurityGroup, func(d *provisioning.ResourceDescriptor) {
		d.Attributes["attached_count"] = attached
		d.Attributes["needs_manual_fix"] = needsFix
	})

	if len(members) == 0 {
		return provisioning.Partial(errors.New("instance pool has no members yet"), detail)
	}
	if len(failures) > 0 {
		ctx.Report.Warn("security group %s attached to %d/%d nodes; attach the rest manually", sg.Name, attached, len(members))
		return provisioning.Partial(errors.Join(failures...), detail)
	}
	return provisioning.Success(detail)
}
