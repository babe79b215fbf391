package image

import (
	"fmt"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/registry"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
)

// Push logs in to the registry and pushes the versioned tag, then tags and
// pushes latest. A failed latest push leaves the stage partial.
func (p *Provisioner) Push(ctx *provisioning.Context) provisioning.StageResult {
	if ctx.Registry == nil {
		return provisioning.Failed(errNoRegistry)
	}
	cfg := ctx.Config
	ref := ctx.Image()

	creds := registry.Credentials{
		Server:   cfg.Registry,
		Username: cfg.DockerHubUser,
		Password: cfg.Credentials.DockerHubToken,
	}
	if err := ctx.Registry.Login(ctx, creds); err != nil {
		return provisioning.Failed(fmt.Errorf("registry login failed: %w", err))
	}

	if err := ctx.Registry.Push(ctx, ref); err != nil {
		return provisioning.Failed(fmt.Errorf("failed to push %s: %w", ref, err))
	}
	ctx.Observer.Printf("[%s] pushed %s", StagePush, ref)
	ctx.Report.UpdateResource(provisioning.ResourceImage, func(d *provisioning.ResourceDescriptor) {
		d.Name = ref
		d.State = "pushed"
	})

	latest := naming.Image(cfg.DockerHubUser, cfg.ServiceName, LatestTag)
	detail := map[string]any{"image": ref, "latest": latest, "latest_pushed": false}

	err := ctx.Registry.Tag(ctx, ref, latest)
	if err == nil {
		err = ctx.Registry.Push(ctx, latest)
	}
	if err != nil {
		msg := fmt.Sprintf("could not publish %s: %v", latest, err)
		provisioning.LogWarning(ctx.Observer, StagePush, msg)
		ctx.Report.Warn("%s", msg)
		return provisioning.Partial(err, detail)
	}

	detail["latest_pushed"] = true
	ctx.Report.UpdateResource(provisioning.ResourceImage, func(d *provisioning.ResourceDescriptor) {
		d.Attributes["tags"] = []string{cfg.ServiceVersion, LatestTag}
	})
	return provisioning.Success(detail)
}
