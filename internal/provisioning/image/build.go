package image

import (
	"fmt"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/registry"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// Build builds the service image tagged with its version.
func (p *Provisioner) Build(ctx *provisioning.Context) provisioning.StageResult {
	if ctx.Registry == nil {
		return provisioning.Failed(errNoRegistry)
	}
	ref := Reference(ctx)
	spec := registry.BuildSpec{
		ContextDir: ctx.Config.BuildContext,
		Dockerfile: ctx.Config.Dockerfile,
		Tags:       []string{ref},
	}
	if spec.ContextDir == "" {
		spec.ContextDir = defaultBuildContext
	}
	if spec.Dockerfile == "" {
		spec.Dockerfile = defaultDockerfile
	}

	provisioning.LogResourceCreating(ctx.Observer, StageBuild, "image", ref)
	if err := ctx.Registry.Build(ctx, spec); err != nil {
		return provisioning.Failed(fmt.Errorf("failed to build %s: %w", ref, err))
	}

	ctx.State.Image = ref
	ctx.Report.SetImage(ref)
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:  provisioning.ResourceImage,
		Name:  ref,
		State: "built",
	})
	provisioning.LogResourceCreated(ctx.Observer, StageBuild, "image", ref, ref)

	return provisioning.Success(map[string]any{
		"image":      ref,
		"context":    spec.ContextDir,
		"dockerfile": spec.Dockerfile,
	})
}
