package managed

import (
	"context"
	"fmt"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/postgres"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/async"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
)

const (
	databaseFuture      = "database"
	databaseTypeDefault = "postgres"
	databaseCreateWait  = 2 * time.Minute
)

// StartDatabase creates {slug}-db in the background and waits until it
// reports running with a connection URI. A service that is not ready before
// DatabaseReady resolves with Ready false and no error.
func (p *Provisioner) StartDatabase(ctx *provisioning.Context) *async.Future[provisioning.DatabaseResult] {
	if !ctx.Config.Database.Enabled {
		return async.Resolved(databaseFuture, provisioning.DatabaseResult{}, nil)
	}
	return async.Go(ctx.Context, databaseFuture, func(c context.Context) (provisioning.DatabaseResult, error) {
		return provisionDatabase(c, ctx)
	})
}

func provisionDatabase(c context.Context, ctx *provisioning.Context) (provisioning.DatabaseResult, error) {
	cfg := ctx.Config.Database
	name := naming.Database(ctx.Run.Slug)
	dbType := cfg.Type
	if dbType == "" {
		dbType = databaseTypeDefault
	}
	result := provisioning.DatabaseResult{Name: name, Type: dbType}

	provisioning.LogResourceCreating(ctx.Observer, StageManagedServices, "database", name)
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:  provisioning.ResourceDatabase,
		Name:  name,
		State: "creating",
		Attributes: map[string]any{
			"type":    dbType,
			"version": cfg.Version,
			"plan":    cfg.Plan,
		},
	})

	op, err := ctx.Cloud.CreatePostgres(c, exoscale.DatabaseSpec{Name: name, Plan: cfg.Plan, Version: cfg.Version})
	switch {
	case err != nil && exoscale.IsAlreadyExists(err):
		provisioning.LogResourceExists(ctx.Observer, StageManagedServices, "database", name, name)
	case err != nil:
		markDatabase(ctx, "failed", false)
		return result, fmt.Errorf("failed to create database %s: %w", name, err)
	default:
		_, res := exoscale.WaitForOperation(c, ctx.Cloud, ctx.Handle(op, "database "+name, databaseCreateWait))
		if res.Outcome == poll.Failed || res.Outcome == poll.Cancelled {
			markDatabase(ctx, "failed", false)
			return result, provisioning.WaitError("database "+name, res, databaseCreateWait)
		}
		provisioning.LogResourceCreated(ctx.Observer, StageManagedServices, "database", name, name)
	}

	var latest *exoscale.Database
	res := poll.Until(c, ctx.PollOptions(ctx.Timeouts.DatabaseReadyPoll, ctx.Timeouts.DatabaseReady), func(c context.Context) (bool, error) {
		db, err := ctx.Cloud.GetPostgres(c, name)
		if err != nil {
			if exoscale.IsNotFound(err) {
				return false, nil
			}
			ctx.Observer.Printf("[%s] database %s: transient read error: %v", StageManagedServices, name, err)
			return false, nil
		}
		latest = db
		ctx.Observer.Printf("[%s] database %s state: %s", StageManagedServices, name, db.State)
		return db.State == exoscale.DatabaseRunning && db.URI != "", nil
	})

	if latest != nil {
		result.State = latest.State
		if latest.Type != "" {
			result.Type = normalizeType(latest.Type)
		}
	}

	switch res.Outcome {
	case poll.Completed:
		result.URI = latest.URI
		result.Ready = true
	case poll.TimedOut:
		msg := fmt.Sprintf("database %s not running after %v; inject credentials manually", name, ctx.Timeouts.DatabaseReady)
		provisioning.LogWarning(ctx.Observer, StageManagedServices, msg)
		ctx.Report.Warn("%s", msg)
		markDatabase(ctx, result.State, false)
		return result, nil
	default:
		markDatabase(ctx, "failed", false)
		return result, provisioning.WaitError("database "+name, res, ctx.Timeouts.DatabaseReady)
	}

	reachable := pingDatabase(c, ctx, name, result.URI)
	ctx.Report.UpdateResource(provisioning.ResourceDatabase, func(d *provisioning.ResourceDescriptor) {
		d.State = result.State
		d.Attributes["ready"] = true
		if reachable != nil {
			d.Attributes["reachable"] = *reachable
		}
	})
	return result, nil
}

// pingDatabase returns nil when no pinger is configured.
func pingDatabase(c context.Context, ctx *provisioning.Context, name, uri string) *bool {
	if ctx.DBPinger == nil {
		return nil
	}
	ok := true
	if err := ctx.DBPinger.Ping(c, uri); err != nil {
		ok = false
		msg := fmt.Sprintf("database %s is running but %s did not answer: %v", name, postgres.Redact(uri), err)
		provisioning.LogWarning(ctx.Observer, StageManagedServices, msg)
		ctx.Report.Warn("%s", msg)
	}
	return &ok
}

func markDatabase(ctx *provisioning.Context, state string, ready bool) {
	ctx.Report.UpdateResource(provisioning.ResourceDatabase, func(d *provisioning.ResourceDescriptor) {
		d.State = state
		d.Attributes["ready"] = ready
	})
}

// normalizeType maps the provider's short service type to the name exposed
// to workloads.
func normalizeType(t string) string {
	if t == "pg" {
		return databaseTypeDefault
	}
	return t
}
