// Package provisioning provides the shared types and the stage sequencer for
// deploy runs.
//
// # Subpackages
//
//   - image/: container image build and push
//   - infrastructure/: security group, cluster, nodepool, security attachment, kubeconfig
//   - managed/: database and bucket, started concurrently with the cluster
//   - workload/: namespace, pull secret, node readiness, manifests, pod verification
//   - credentials/: publishes database and bucket credentials as secrets
//   - destroy/: teardown by name discovery in reverse dependency order
//
// # Core Types
//
// Context carries configuration, run identity, stage state, the control-plane
// client and the observer. A Stage returns a StageResult; the Sequencer runs
// stages in order, stops on a failed fatal stage, and always persists the
// Report through a Recorder, using the partial filename on abort.
package provisioning
