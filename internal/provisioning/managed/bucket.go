package managed

import (
	"context"
	"errors"
	"fmt"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/async"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
)

const bucketFuture = "bucket"

// StartBucket creates {slug}-{suffix}-{label} in the background. A bucket
// the account already owns counts as created.
func (p *Provisioner) StartBucket(ctx *provisioning.Context) *async.Future[provisioning.BucketResult] {
	if !ctx.Config.ObjectStorage.Enabled {
		return async.Resolved(bucketFuture, provisioning.BucketResult{}, nil)
	}
	return async.Go(ctx.Context, bucketFuture, func(c context.Context) (provisioning.BucketResult, error) {
		return provisionBucket(c, ctx)
	})
}

func provisionBucket(c context.Context, ctx *provisioning.Context) (provisioning.BucketResult, error) {
	name := naming.Bucket(ctx.Run.Slug, ctx.Run.Suffix, ctx.Config.ObjectStorage.BucketName)
	if ctx.Storage == nil {
		return provisioning.BucketResult{Name: name}, errors.New("object storage client not configured")
	}
	result := provisioning.BucketResult{
		Name:     name,
		Endpoint: ctx.Storage.Endpoint(),
		Region:   ctx.Storage.Region(),
	}

	provisioning.LogResourceCreating(ctx.Observer, StageManagedServices, "bucket", name)
	if err := ctx.Storage.CreateBucket(c, name); err != nil {
		// The bucket may exist despite the error.
		if exists, herr := ctx.Storage.BucketExists(c, name); herr == nil && exists {
			ctx.Observer.Printf("[%s] bucket %s create failed (%v) but the bucket is accessible, using it",
				StageManagedServices, name, err)
			return recordBucket(ctx, result, "existing"), nil
		}
		ctx.Report.RecordResource(provisioning.ResourceDescriptor{
			Kind:       provisioning.ResourceBucket,
			Name:       name,
			State:      "failed",
			Attributes: map[string]any{"endpoint": result.Endpoint},
		})
		return result, fmt.Errorf("failed to create bucket %s: %w", name, err)
	}

	return recordBucket(ctx, result, "created"), nil
}

func recordBucket(ctx *provisioning.Context, result provisioning.BucketResult, state string) provisioning.BucketResult {
	result.Exists = true
	if state == "created" {
		provisioning.LogResourceCreated(ctx.Observer, StageManagedServices, "bucket", result.Name, result.Name)
	} else {
		provisioning.LogResourceExists(ctx.Observer, StageManagedServices, "bucket", result.Name, result.Name)
	}
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:  provisioning.ResourceBucket,
		Name:  result.Name,
		State: state,
		Attributes: map[string]any{
			"endpoint": result.Endpoint,
			"region":   result.Region,
		},
	})
	return result
}
