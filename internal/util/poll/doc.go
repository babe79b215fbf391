// Package poll waits for remote state to converge without busy looping.
//
// [Until] calls a check every [Options.Interval] until it reports done, fails,
// or [Options.Timeout] elapses. Timeouts are reported as [TimedOut], never as
// an error, so each caller decides whether running out of time is fatal or a
// degraded success. Cluster, nodepool, database and node readiness waits all
// use it, as does operation polling in the exoscale package.
//
// [FakeClock] supplies Sleep and Now so tests can drive long waits instantly.
package poll
