// Package destroy tears down every resource that belongs to a project.
//
// Targets are discovered, not remembered: every listing is filtered by the
// project slug as a substring, so names generated by earlier runs or by the
// cluster's cloud controller are found without any run state. Deletion
// follows a fixed rank (namespace, database, bucket, nodepool, cluster, load
// balancer, security group). A not-found answer on any delete counts as
// success. Security groups are deleted last, after a settling delay, and
// retried once; groups still locked are reported for manual cleanup.
package destroy
