// Package workload prepares the cluster for the service and deploys it.
//
// Stages run in this order: namespace, image pull secret, node readiness,
// manifest apply, pod verification. Node readiness and pod verification never
// abort a run; a cluster that is slow to converge yields a partial outcome.
package workload
