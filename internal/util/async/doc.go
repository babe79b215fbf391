// Package async runs independent provisioning work concurrently.
//
// [RunParallel] fans out a fixed set of tasks and joins them. [Future] starts a
// single long-running job, such as a managed database that takes minutes to
// reach a running state, and lets a later stage join its result with [Future.Await].
package async
