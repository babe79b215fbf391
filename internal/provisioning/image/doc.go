// Package image builds the service image and pushes it to the registry.
//
// Both stages are fatal: nothing later can run without an image the cluster
// can pull. Only the convenience "latest" tag is allowed to fail.
package image
