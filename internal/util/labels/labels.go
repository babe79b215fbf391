package labels

// Standard label keys. Exoscale label keys may not contain a slash, so the
// keys are prefixed with a dash instead of a domain.
const (
	// KeyProject identifies which project a resource belongs to
	KeyProject = "exodeploy-project"

	// KeyRun identifies the run that created a resource
	KeyRun = "exodeploy-run"

	// KeyRole identifies the role of a resource (cluster, workers)
	KeyRole = "exodeploy-role"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "managed-by"
)

// Role values
const (
	RoleCluster = "cluster"
	RoleWorkers = "workers"
)

// ManagedByExodeploy is the KeyManagedBy value for resources this tool creates.
const ManagedByExodeploy = "exodeploy"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the project slug pre-set.
func NewLabelBuilder(slug string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyProject:   slug,
			KeyManagedBy: ManagedByExodeploy,
		},
	}
}

// WithRun adds the run timestamp label.
func (lb *LabelBuilder) WithRun(timestamp string) *LabelBuilder {
	if timestamp != "" {
		lb.labels[KeyRun] = timestamp
	}
	return lb
}

// WithRole adds a role label.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// Matches reports whether labels belong to the project slug.
func Matches(labels map[string]string, slug string) bool {
	return labels[KeyProject] == slug
}
