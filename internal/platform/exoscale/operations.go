package exoscale

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/retry"
)

// DefaultOperationInterval is how often operation state is polled.
const DefaultOperationInterval = 5 * time.Second

// OperationError is returned when an operation reaches a non-success terminal state.
type OperationError struct {
	Operation *Operation
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %s ended in state %s: %s", e.Operation.ID, e.Operation.State, e.Operation.Message)
}

// OperationHandle identifies one asynchronous operation and how long to wait
// for it. A handle is consumed by exactly one WaitForOperation call.
type OperationHandle struct {
	Operation *Operation
	// Resource names what the operation acts on, for logs.
	Resource string
	Poll     poll.Options
}

// NewHandle builds a handle with the default poll interval.
func NewHandle(op *Operation, resource string, maxWait time.Duration) OperationHandle {
	return OperationHandle{
		Operation: op,
		Resource:  resource,
		Poll:      poll.Options{Interval: DefaultOperationInterval, Timeout: maxWait},
	}
}

// WaitForOperation polls until the operation reaches a terminal state or the
// handle's deadline passes. A timeout is reported through the result outcome,
// a failed operation through result.Err as an *OperationError.
func WaitForOperation(ctx context.Context, reader OperationReader, h OperationHandle) (*Operation, poll.Result) {
	current := h.Operation
	if current == nil {
		return nil, poll.Result{Outcome: poll.Failed, Err: fmt.Errorf("no operation to wait for on %s", h.Resource)}
	}

	res := poll.Until(ctx, h.Poll, func(ctx context.Context) (bool, error) {
		if !current.Terminal() {
			op, err := reader.GetOperation(ctx, current.ID)
			if err != nil {
				if IsNotFound(err) {
					return false, fmt.Errorf("operation %s for %s: %w", current.ID, h.Resource, err)
				}
				log.Printf("[Operation] %s: transient error reading operation %s: %v", h.Resource, current.ID, err)
				return false, nil
			}
			current = op
		}
		switch current.State {
		case OperationSuccess:
			return true, nil
		case OperationFailure, OperationTimeout:
			return false, &OperationError{Operation: current}
		default:
			return false, nil
		}
	})
	return current, res
}

// DeleteResult describes the outcome of a delete call.
type DeleteResult struct {
	Kind string
	Name string
	// Deleted is true when the resource is gone, including when it was
	// already gone before the call.
	Deleted     bool
	AlreadyGone bool
	// Outcome is the wait outcome. TimedOut means the deletion was accepted
	// but not confirmed in time.
	Outcome poll.Outcome
}

// DeleteOperation deletes one resource. A not-found response at any point is
// treated as success.
type DeleteOperation struct {
	Kind   string
	Name   string
	Delete func(ctx context.Context) (*Operation, error)
	// Retry governs the delete call itself. The zero value makes one attempt.
	Retry retry.Policy
	// Wait is skipped when Timeout is zero.
	Wait poll.Options
}

// Execute runs the delete and optionally waits for it to complete.
func (op *DeleteOperation) Execute(ctx context.Context, reader OperationReader) (DeleteResult, error) {
	result := DeleteResult{Kind: op.Kind, Name: op.Name, Outcome: poll.Completed}

	var pending *Operation
	err := retry.Do(ctx, op.Retry, func(ctx context.Context) error {
		o, err := op.Delete(ctx)
		if err != nil {
			if IsNotFound(err) {
				result.AlreadyGone = true
				return nil
			}
			return err
		}
		pending = o
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to delete %s %s: %w", op.Kind, op.Name, err)
	}

	if result.AlreadyGone {
		result.Deleted = true
		return result, nil
	}
	if pending == nil || op.Wait.Timeout <= 0 {
		result.Deleted = true
		return result, nil
	}

	_, res := WaitForOperation(ctx, reader, OperationHandle{
		Operation: pending,
		Resource:  op.Kind + " " + op.Name,
		Poll:      op.Wait,
	})
	result.Outcome = res.Outcome
	switch res.Outcome {
	case poll.Completed:
		result.Deleted = true
	case poll.Failed:
		var opErr *OperationError
		if !errors.As(res.Err, &opErr) && IsNotFound(res.Err) {
			result.Deleted = true
			result.AlreadyGone = true
			result.Outcome = poll.Completed
			return result, nil
		}
		return result, fmt.Errorf("failed to delete %s %s: %w", op.Kind, op.Name, res.Err)
	case poll.Cancelled:
		return result, fmt.Errorf("delete of %s %s interrupted: %w", op.Kind, op.Name, res.Err)
	}
	return result, nil
}
