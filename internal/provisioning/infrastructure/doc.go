// Package infrastructure provisions the Exoscale resources a deployment runs
// on: the security group, the SKS cluster, its nodepool, and the kubeconfig.
//
// The nodepool is created without a security group. The group is attached
// to each compute member afterwards, because associating it at creation time
// fails server-side. The network load balancer is never created here; the
// cluster's cloud controller creates it for the workload's LoadBalancer
// Service.
package infrastructure
