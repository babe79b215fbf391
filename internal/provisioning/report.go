package provisioning

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Resource kinds as they appear in the report.
const (
	ResourceImage         = "image"
	ResourceSecurityGroup = "security-group"
	ResourceCluster       = "cluster"
	ResourceNodepool      = "node-fleet"
	ResourceKubeconfig    = "kubeconfig"
	ResourceLoadBalancer  = "load-balancer"
	ResourceDatabase      = "database"
	ResourceBucket        = "bucket"
	ResourceNamespace     = "namespace"
	ResourceWorkload      = "workload"
)

// StageRecord is the persisted outcome of one stage.
type StageRecord struct {
	Status   string         `json:"status"`
	Fatal    bool           `json:"fatal"`
	Detail   map[string]any `json:"detail,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration string         `json:"duration,omitempty"`
}

// ResourceDescriptor records one provisioned resource.
type ResourceDescriptor struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"`
	State string `json:"state,omitempty"`
	// DependsOn maps a dependency kind to its external id, e.g. the owning
	// cluster of a node fleet.
	DependsOn  map[string]string `json:"depends_on,omitempty"`
	Attributes map[string]any    `json:"attributes,omitempty"`
}

func (d ResourceDescriptor) clone() ResourceDescriptor {
	out := d
	if d.DependsOn != nil {
		out.DependsOn = make(map[string]string, len(d.DependsOn))
		for k, v := range d.DependsOn {
			out.DependsOn[k] = v
		}
	}
	if d.Attributes != nil {
		out.Attributes = make(map[string]any, len(d.Attributes))
		for k, v := range d.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// Report is the execution report of one run. It is safe for concurrent use;
// all mutation goes through its methods.
type Report struct {
	mu sync.Mutex

	runID       string
	project     string
	zone        string
	image       string
	status      string
	stages      map[string]StageRecord
	stageOrder  []string
	resources   map[string]ResourceDescriptor
	warnings    []string
	completedAt time.Time
}

// NewReport creates an empty report for a run.
func NewReport(runID, project, zone string) *Report {
	return &Report{
		runID:     runID,
		project:   project,
		zone:      zone,
		stages:    make(map[string]StageRecord),
		resources: make(map[string]ResourceDescriptor),
	}
}

// RunID returns the run identifier.
func (r *Report) RunID() string {
	return r.runID
}

// SetImage records the image reference the run deploys.
func (r *Report) SetImage(image string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.image = image
}

// SetStatus records the overall pipeline state.
func (r *Report) SetStatus(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
}

// RecordStage stores a stage outcome. A stage is recorded once; later calls
// for the same name overwrite the record but keep its position.
func (r *Report) RecordStage(name string, rec StageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stages[name]; !ok {
		r.stageOrder = append(r.stageOrder, name)
	}
	r.stages[name] = rec
}

// RecordResource stores the descriptor for a resource kind.
func (r *Report) RecordResource(d ResourceDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[d.Kind] = d.clone()
}

// UpdateResource applies fn to the descriptor of kind, creating it if needed.
func (r *Report) UpdateResource(kind string, fn func(*ResourceDescriptor)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.resources[kind]
	if !ok {
		d = ResourceDescriptor{Kind: kind}
	}
	if d.Attributes == nil {
		d.Attributes = make(map[string]any)
	}
	fn(&d)
	r.resources[kind] = d
}

// Resource returns a copy of the descriptor for kind.
func (r *Report) Resource(kind string) (ResourceDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.resources[kind]
	return d.clone(), ok
}

// Warn appends a warning.
func (r *Report) Warn(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns all recorded warnings.
func (r *Report) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

// Complete stamps the completion time.
func (r *Report) Complete(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completedAt = at.UTC()
}

// Snapshot is the serialisable form of a Report.
type Snapshot struct {
	RunID       string                        `json:"run_id"`
	Image       string                        `json:"image"`
	Zone        string                        `json:"zone"`
	Project     string                        `json:"project"`
	Status      string                        `json:"status,omitempty"`
	Stages      map[string]StageRecord        `json:"stages"`
	StageOrder  []string                      `json:"stage_order"`
	Resources   map[string]ResourceDescriptor `json:"resources"`
	Warnings    []string                      `json:"warnings"`
	CompletedAt *time.Time                    `json:"completed_at,omitempty"`
}

// Snapshot returns a consistent copy of the report.
func (r *Report) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		RunID:      r.runID,
		Image:      r.image,
		Zone:       r.zone,
		Project:    r.project,
		Status:     r.status,
		Stages:     make(map[string]StageRecord, len(r.stages)),
		StageOrder: append([]string(nil), r.stageOrder...),
		Resources:  make(map[string]ResourceDescriptor, len(r.resources)),
		Warnings:   append([]string{}, r.warnings...),
	}
	for k, v := range r.stages {
		s.Stages[k] = v
	}
	for k, v := range r.resources {
		s.Resources[k] = v.clone()
	}
	if !r.completedAt.IsZero() {
		at := r.completedAt
		s.CompletedAt = &at
	}
	return s
}

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Snapshot())
}
