package infrastructure

import (
	"fmt"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
)

// ProvisionSecurityGroup creates {slug}-sg-{suffix}. A name that already
// exists is looked up and reused.
func (p *Provisioner) ProvisionSecurityGroup(ctx *provisioning.Context) provisioning.StageResult {
	name := naming.SecurityGroup(ctx.Run.Slug, ctx.Run.Suffix)
	description := fmt.Sprintf("%s - %s (%s)", ctx.Config.ProjectName, ctx.Config.ServiceName, ctx.Run.Timestamp)
	provisioning.LogResourceCreating(ctx.Observer, StageSecurityGroup, "security group", name)

	sg, existed, err := ensureSecurityGroup(ctx, name, description)
	if err != nil {
		return provisioning.Failed(err)
	}

	if existed {
		provisioning.LogResourceExists(ctx.Observer, StageSecurityGroup, "security group", name, sg.ID)
	} else {
		provisioning.LogResourceCreated(ctx.Observer, StageSecurityGroup, "security group", name, sg.ID)
	}
	ctx.State.SecurityGroup = sg
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:  provisioning.ResourceSecurityGroup,
		Name:  sg.Name,
		ID:    sg.ID,
		State: "created",
		Attributes: map[string]any{
			"reused": existed,
		},
	})
	ctx.Observer.Printf("[%s] Web access via NodePort %d", StageSecurityGroup, ctx.Config.NodePort)
	return provisioning.Success(map[string]any{"id": sg.ID, "name": sg.Name, "reused": existed})
}

func ensureSecurityGroup(ctx *provisioning.Context, name, description string) (*exoscale.SecurityGroup, bool, error) {
	op, err := ctx.Cloud.CreateSecurityGroup(ctx, name, description)
	if err != nil {
		if !exoscale.IsAlreadyExists(err) {
			return nil, false, fmt.Errorf("failed to create security group %s: %w", name, err)
		}
		sg, lookupErr := findSecurityGroup(ctx, name)
		if lookupErr != nil {
			return nil, false, fmt.Errorf("security group %s exists but could not be read: %w", name, lookupErr)
		}
		return sg, true, nil
	}

	done, res := ctx.AwaitOperation(op, "security group "+name, securityGroupTimeout)
	if err := provisioning.WaitError("security group "+name, res, securityGroupTimeout); err != nil {
		return nil, false, err
	}
	if done.ReferenceID != "" {
		return &exoscale.SecurityGroup{ID: done.ReferenceID, Name: name}, false, nil
	}
	sg, err := findSecurityGroup(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return sg, false, nil
}

func findSecurityGroup(ctx *provisioning.Context, name string) (*exoscale.SecurityGroup, error) {
	groups, err := ctx.Cloud.ListSecurityGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list security groups: %w", err)
	}
	for i := range groups {
		if groups[i].Name == name {
			return &groups[i], nil
		}
	}
	return nil, fmt.Errorf("security group %s: %w", name, exoscale.ErrNotFound)
}
