// Package testing provides builders, fixtures and doubles shared by the
// provisioning tests.
//
//   - ConfigBuilder: fluent builder for valid test configurations
//   - NewStageContext: a provisioning.Context wired to mocks and a fake clock
//   - MockObjectStorage: testify mock for the bucket surface
//   - RecordingObserver: an Observer that keeps every event
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithProject("Proj A").
//	    WithDatabase(true).
//	    Build()
//
//	fx := testing.NewStageContext(t, cfg)
//	res := stage.Run(fx.Ctx)
package testing
