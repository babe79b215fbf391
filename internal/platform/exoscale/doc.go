// Package exoscale is the control-plane boundary for deploy and teardown.
//
// Each resource kind has its own capability interface ([SecurityGroupManager],
// [ClusterManager], [NodepoolManager], [DatabaseManager], [LoadBalancerManager]),
// combined into [ControlPlane]. [RealClient] implements them with the egoscale
// v3 SDK; [MockClient] implements them for tests.
//
// Mutating calls return an [Operation]. [WaitForOperation] polls it to a
// terminal state and reports a timeout as an outcome rather than an error.
// [DeleteOperation] treats not-found as a successful delete.
package exoscale
