// Package s3 provides a client for Exoscale Simple Object Storage (SOS), which
// speaks the S3 protocol at https://sos-{zone}.exoscale.com.
//
// Deploy uses it to create per-run buckets; teardown lists buckets by project
// slug, empties them and deletes them.
package s3
