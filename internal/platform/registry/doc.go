// Package registry builds container images and pushes them to a registry
// through the Docker Engine API.
package registry
