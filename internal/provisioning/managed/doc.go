// Package managed provisions the optional managed services of a deployment:
// a PostgreSQL DBaaS service and an object storage bucket.
//
// Both are started as futures right after the security group exists and run
// alongside cluster creation. The credential injector joins them once the
// workload namespace is ready. Neither future rolls anything back; an
// aborted run leaves them to teardown discovery.
package managed
