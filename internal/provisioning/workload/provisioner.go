package workload

import (
	"context"
	"errors"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/retry"
)

// Stage names, as recorded in the report.
const (
	StageNamespace  = "namespace"
	StagePullSecret = "pull_secret"
	StageNodes      = "node_readiness"
	StageManifests  = "manifests"
	StagePods       = "pod_verification"
)

// PullSecretName is referenced by the workload's imagePullSecrets.
const PullSecretName = "dockerhub-creds"

var errNoKubeClient = errors.New("kubernetes client not initialized")

// The API server of a fresh cluster can refuse requests for a short while
// after the kubeconfig is issued.
const (
	kubeAPIRetries    = 4
	kubeAPIFirstDelay = 2 * time.Second
	kubeAPIMaxDelay   = 20 * time.Second
)

// callKubeAPI runs fn with exponential backoff. Permanent API rejections are
// returned without retrying.
func callKubeAPI(ctx *provisioning.Context, stage, what string, fn func(ctx context.Context) error) error {
	return retry.WithExponentialBackoff(ctx, func(c context.Context) error {
		err := fn(c)
		if err != nil && k8s.IsPermanent(err) {
			return retry.Fatal(err)
		}
		return err
	},
		retry.WithMaxRetries(kubeAPIRetries),
		retry.WithInitialDelay(kubeAPIFirstDelay),
		retry.WithMaxDelay(kubeAPIMaxDelay),
		retry.WithSleep(ctx.Sleep),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			ctx.Observer.Printf("[%s] %s failed (attempt %d/%d): %v, retrying in %v",
				stage, what, attempt, kubeAPIRetries+1, err, delay)
		}),
	)
}

// Provisioner handles workload deployment.
type Provisioner struct{}

// NewProvisioner creates a new workload provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

func (p *Provisioner) NamespaceStage() provisioning.Stage {
	return provisioning.Stage{Name: StageNamespace, Fatal: true, Run: p.EnsureNamespace}
}

func (p *Provisioner) PullSecretStage() provisioning.Stage {
	return provisioning.Stage{Name: StagePullSecret, Fatal: false, Run: p.ApplyPullSecret}
}

func (p *Provisioner) NodesStage() provisioning.Stage {
	return provisioning.Stage{Name: StageNodes, Fatal: false, Run: p.WaitForNodes}
}

func (p *Provisioner) ManifestsStage() provisioning.Stage {
	return provisioning.Stage{Name: StageManifests, Fatal: true, Run: p.ApplyManifests}
}

func (p *Provisioner) PodsStage() provisioning.Stage {
	return provisioning.Stage{Name: StagePods, Fatal: false, Run: p.VerifyPods}
}
