// Package credentials publishes managed service credentials to the workload
// namespace as Kubernetes secrets.
package credentials

import (
	"errors"
	"fmt"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// StageCredentials is the stage name recorded in the report.
const StageCredentials = "credentials"

// Secret names and keys read by the workload.
const (
	DatabaseSecretName = "database-credentials"
	StorageSecretName  = "object-storage-credentials"

	KeyDatabaseURL  = "DATABASE_URL"
	KeyDatabaseType = "DATABASE_TYPE"

	KeyBucketName      = "BUCKET_NAME"
	KeyS3Endpoint      = "S3_ENDPOINT"
	KeyS3Region        = "S3_REGION"
	KeyAccessKeyID     = "AWS_ACCESS_KEY_ID"
	KeySecretAccessKey = "AWS_SECRET_ACCESS_KEY"
)

const manualInjection = "manual injection required"

// Injector joins the managed service futures and writes their secrets.
type Injector struct{}

// NewInjector creates a credential injector.
func NewInjector() *Injector {
	return &Injector{}
}

// Stage returns the soft credentials stage.
func (i *Injector) Stage() provisioning.Stage {
	return provisioning.Stage{Name: StageCredentials, Fatal: false, Run: i.Inject}
}

// Inject waits for the database and bucket futures and writes one secret per
// ready service. A service that is not ready is skipped with a warning.
// Nothing is retried.
func (i *Injector) Inject(ctx *provisioning.Context) provisioning.StageResult {
	dbEnabled := ctx.Config.Database.Enabled
	bucketEnabled := ctx.Config.ObjectStorage.Enabled
	if !dbEnabled && !bucketEnabled {
		return provisioning.Skipped("no managed services enabled")
	}
	if ctx.State.Kube == nil {
		return provisioning.Failed(errors.New("kubernetes client not initialized"))
	}

	detail := map[string]any{}
	var problems []error

	if dbEnabled {
		injected, err := i.injectDatabase(ctx)
		detail["database"] = injected
		if err != nil {
			problems = append(problems, err)
		}
	}
	if bucketEnabled {
		injected, err := i.injectBucket(ctx)
		detail["bucket"] = injected
		if err != nil {
			problems = append(problems, err)
		}
	}

	if len(problems) > 0 {
		return provisioning.Partial(errors.Join(problems...), detail)
	}
	return provisioning.Success(detail)
}

func (i *Injector) injectDatabase(ctx *provisioning.Context) (bool, error) {
	if ctx.State.Database == nil {
		return false, i.skip(ctx, "database", errors.New("database was never started"))
	}
	db, err := ctx.State.Database.Await(ctx)
	if err != nil {
		return false, i.skip(ctx, "database", err)
	}
	if !db.Ready || db.URI == "" {
		return false, i.skip(ctx, "database", fmt.Errorf("database %s is %s", db.Name, orUnknown(db.State)))
	}

	secret := k8s.OpaqueSecret(ctx.Config.Namespace, DatabaseSecretName, map[string]string{
		KeyDatabaseURL:  db.URI,
		KeyDatabaseType: db.Type,
	})
	if err := ctx.State.Kube.ApplySecret(ctx, secret); err != nil {
		return false, i.skip(ctx, "database", fmt.Errorf("failed to apply %s: %w", DatabaseSecretName, err))
	}
	ctx.Observer.Printf("[%s] %s applied", StageCredentials, DatabaseSecretName)
	ctx.Report.UpdateResource(provisioning.ResourceDatabase, func(d *provisioning.ResourceDescriptor) {
		d.Attributes["secret"] = DatabaseSecretName
	})
	return true, nil
}

func (i *Injector) injectBucket(ctx *provisioning.Context) (bool, error) {
	if ctx.State.Bucket == nil {
		return false, i.skip(ctx, "bucket", errors.New("bucket was never started"))
	}
	bucket, err := ctx.State.Bucket.Await(ctx)
	if err != nil {
		return false, i.skip(ctx, "bucket", err)
	}
	if !bucket.Exists {
		return false, i.skip(ctx, "bucket", fmt.Errorf("bucket %s does not exist", bucket.Name))
	}

	creds := ctx.Config.Credentials
	secret := k8s.OpaqueSecret(ctx.Config.Namespace, StorageSecretName, map[string]string{
		KeyBucketName:      bucket.Name,
		KeyS3Endpoint:      bucket.Endpoint,
		KeyS3Region:        bucket.Region,
		KeyAccessKeyID:     creds.APIKey,
		KeySecretAccessKey: creds.APISecret,
	})
	if err := ctx.State.Kube.ApplySecret(ctx, secret); err != nil {
		return false, i.skip(ctx, "bucket", fmt.Errorf("failed to apply %s: %w", StorageSecretName, err))
	}
	ctx.Observer.Printf("[%s] %s applied", StageCredentials, StorageSecretName)
	ctx.Report.UpdateResource(provisioning.ResourceBucket, func(d *provisioning.ResourceDescriptor) {
		d.Attributes["secret"] = StorageSecretName
	})
	return true, nil
}

func (i *Injector) skip(ctx *provisioning.Context, service string, cause error) error {
	msg := fmt.Sprintf("%s credentials not injected (%v): %s", service, cause, manualInjection)
	provisioning.LogWarning(ctx.Observer, StageCredentials, msg)
	ctx.Report.Warn("%s", msg)
	return fmt.Errorf("%s: %w", service, cause)
}

func orUnknown(s string) string {
	if s == "" {
		return "not ready"
	}
	return s
}
