// Package naming derives every resource name from the project slug.
//
// Per-run resources follow {slug}-{kind}-{suffix}, where the suffix is the
// HHMMSS of the run start time. Teardown relies on the slug being a substring
// of every name it needs to find, so helpers here must always start with it.
package naming
