// Package labels provides consistent labeling for Exoscale resources.
//
// Clusters and nodepools carry the project slug, the run timestamp, and the
// managing tool so a run's resources can be found in the console.
package labels
