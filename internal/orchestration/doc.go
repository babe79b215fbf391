// Package orchestration composes the deploy workflow from the stage
// provisioners in internal/provisioning. It defines the order and wires
// the run context; the stages do the work.
//
// # Workflow
//
// The Pipeline runs these stages in order:
//  1. Image - build, then push the versioned and latest tags
//  2. Security group
//  3. Managed services - database and bucket start in the background
//  4. Cluster, nodepool, security group attachment
//  5. Kubeconfig and load balancer delegation
//  6. Workload - namespace, pull secret, node readiness, manifests, pods
//  7. Credentials - joins the managed services and injects secrets
//
// # Usage
//
//	pipeline := orchestration.NewPipeline()
//	result := pipeline.Run(ctx, metrics)
//	os.Exit(result.ExitCode())
//
// Each Run creates new cloud resources named after the run timestamp. The
// pipeline is not idempotent; teardown removes what a run left behind.
package orchestration
