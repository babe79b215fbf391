package naming

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Resource kinds used in generated names.
const (
	KindSecurityGroup = "sg"
	KindCluster       = "cluster"
	KindNodepool      = "pool"
)

const maxLabelLength = 63

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// Slugify turns a display name into a lowercase DNS-label-safe identifier.
// Applying it to its own output returns the same value.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = invalidChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLabelLength {
		s = strings.TrimRight(s[:maxLabelLength], "-")
	}
	return s
}

// RunTimestamp formats the run start time as used for output directories.
func RunTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// RunSuffix is the time-derived suffix appended to per-run resource names.
func RunSuffix(t time.Time) string {
	return t.Format("150405")
}

// ResourceName returns {slug}-{kind}-{suffix}.
func ResourceName(slug, kind, suffix string) string {
	return fmt.Sprintf("%s-%s-%s", slug, kind, suffix)
}

// SecurityGroup names the run's security group, {slug}-sg-{suffix}.
func SecurityGroup(slug, suffix string) string {
	return ResourceName(slug, KindSecurityGroup, suffix)
}

// Cluster names the run's SKS cluster.
func Cluster(slug, suffix string) string {
	return ResourceName(slug, KindCluster, suffix)
}

// Nodepool names the run's worker nodepool.
func Nodepool(slug, suffix string) string {
	return ResourceName(slug, KindNodepool, suffix)
}

// Database is stable across runs so teardown can find it without run state.
func Database(slug string) string {
	return fmt.Sprintf("%s-db", slug)
}

// Bucket names are global on the provider, so the run suffix is kept.
func Bucket(slug, suffix, label string) string {
	if label == "" {
		label = "assets"
	}
	return fmt.Sprintf("%s-%s-%s", slug, suffix, Slugify(label))
}

// Image returns the registry reference for a service build.
func Image(user, service, tag string) string {
	return fmt.Sprintf("%s/%s:%s", user, service, tag)
}
