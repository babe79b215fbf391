package provisioning

import (
	"fmt"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
)

// AwaitOperation waits for op on the run's control plane using the context
// clock. The poll result is returned as is, so callers decide what a timeout
// means for their stage.
func (c *Context) AwaitOperation(op *exoscale.Operation, resource string, maxWait time.Duration) (*exoscale.Operation, poll.Result) {
	return exoscale.WaitForOperation(c, c.Cloud, c.Handle(op, resource, maxWait))
}

// WaitError turns a non-completed poll result into an error for stages that
// treat every non-completion as failure.
func WaitError(resource string, res poll.Result, maxWait time.Duration) error {
	switch res.Outcome {
	case poll.Completed:
		return nil
	case poll.TimedOut:
		return fmt.Errorf("%s not ready after %v (%d checks)", resource, maxWait, res.Attempts)
	case poll.Cancelled:
		return fmt.Errorf("waiting for %s cancelled: %w", resource, res.Err)
	default:
		return fmt.Errorf("%s failed: %w", resource, res.Err)
	}
}
