package managed

import (
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// StageManagedServices starts the database and bucket futures.
const StageManagedServices = "managed_services"

// Status values recorded in the stage detail.
const (
	statusStarted  = "started"
	statusDisabled = "disabled"
)

// Provisioner starts managed services.
type Provisioner struct{}

// NewProvisioner creates a new managed services provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Stage starts both futures. It never waits for them.
func (p *Provisioner) Stage() provisioning.Stage {
	return provisioning.Stage{Name: StageManagedServices, Fatal: false, Run: p.Start}
}

// Start launches the database and bucket futures and stores them in the
// run state. Disabled services resolve immediately.
func (p *Provisioner) Start(ctx *provisioning.Context) provisioning.StageResult {
	ctx.State.Database = p.StartDatabase(ctx)
	ctx.State.Bucket = p.StartBucket(ctx)

	detail := map[string]any{
		"database": statusDisabled,
		"bucket":   statusDisabled,
	}
	if ctx.Config.Database.Enabled {
		detail["database"] = statusStarted
	}
	if ctx.Config.ObjectStorage.Enabled {
		detail["bucket"] = statusStarted
	}
	if !ctx.Config.Database.Enabled && !ctx.Config.ObjectStorage.Enabled {
		return provisioning.Skipped("no managed services enabled")
	}
	return provisioning.Success(detail)
}
