package image

import (
	"errors"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
)

// Stage names, as recorded in the report.
const (
	StageBuild = "image_build"
	StagePush  = "image_push"
)

// LatestTag is pushed alongside the versioned tag.
const LatestTag = "latest"

const (
	defaultDockerfile   = "Dockerfile"
	defaultBuildContext = "."
)

var errNoRegistry = errors.New("no registry client configured")

// Provisioner handles image building and publishing.
type Provisioner struct{}

// NewProvisioner creates a new image provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// BuildStage builds the versioned image.
func (p *Provisioner) BuildStage() provisioning.Stage {
	return provisioning.Stage{Name: StageBuild, Fatal: true, Run: p.Build}
}

// PushStage logs in and pushes the versioned and latest tags.
func (p *Provisioner) PushStage() provisioning.Stage {
	return provisioning.Stage{Name: StagePush, Fatal: true, Run: p.Push}
}

// Reference returns the versioned image reference for ctx's service.
func Reference(ctx *provisioning.Context) string {
	cfg := ctx.Config
	return naming.Image(cfg.DockerHubUser, cfg.ServiceName, cfg.ServiceVersion)
}
