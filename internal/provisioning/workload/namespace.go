package workload

import (
	"context"
	"fmt"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/registry"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// EnsureNamespace creates the workload namespace if it is missing.
func (p *Provisioner) EnsureNamespace(ctx *provisioning.Context) provisioning.StageResult {
	if ctx.State.Kube == nil {
		return provisioning.Failed(errNoKubeClient)
	}
	ns := ctx.Config.Namespace
	var created bool
	err := callKubeAPI(ctx, StageNamespace, "namespace "+ns, func(c context.Context) error {
		var err error
		created, err = ctx.State.Kube.EnsureNamespace(c, ns)
		return err
	})
	if err != nil {
		return provisioning.Failed(fmt.Errorf("failed to ensure namespace %s: %w", ns, err))
	}

	state := "existing"
	if created {
		state = "created"
		provisioning.LogResourceCreated(ctx.Observer, StageNamespace, "namespace", ns, ns)
	} else {
		provisioning.LogResourceExists(ctx.Observer, StageNamespace, "namespace", ns, ns)
	}
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:  provisioning.ResourceNamespace,
		Name:  ns,
		State: state,
	})
	return provisioning.Success(map[string]any{"namespace": ns, "created": created})
}

// ApplyPullSecret stores the registry token as a dockerconfigjson secret so
// nodes can pull the private image.
func (p *Provisioner) ApplyPullSecret(ctx *provisioning.Context) provisioning.StageResult {
	if ctx.State.Kube == nil {
		return provisioning.Failed(errNoKubeClient)
	}
	server := ctx.Config.Registry
	if server == "" {
		server = registry.DefaultServer
	}
	secret, err := k8s.DockerConfigSecret(ctx.Config.Namespace, PullSecretName, server,
		ctx.Config.DockerHubUser, ctx.Config.Credentials.DockerHubToken)
	if err != nil {
		return provisioning.Failed(err)
	}
	err = callKubeAPI(ctx, StagePullSecret, "secret "+PullSecretName, func(c context.Context) error {
		return ctx.State.Kube.ApplySecret(c, secret)
	})
	if err != nil {
		return provisioning.Failed(fmt.Errorf("failed to apply pull secret: %w", err))
	}
	ctx.Observer.Printf("[%s] %s applied in %s", StagePullSecret, PullSecretName, ctx.Config.Namespace)
	return provisioning.Success(map[string]any{"secret": PullSecretName, "server": server})
}
