// Package retry replaces hand-written sleep-and-retry loops with a single policy
// primitive.
//
// A [Policy] names the attempt budget, the [Backoff] schedule and the predicate
// that decides which errors are transient. Conflict-class errors on security
// group attachment, for example, use five attempts with a [Constant] 30 second
// delay, while nodepool deletion uses a [Linear] schedule. Calls to a freshly
// created cluster's API server go through [WithExponentialBackoff]. Errors
// wrapped with [Fatal] stop immediately regardless of the predicate.
package retry
