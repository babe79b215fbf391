package provisioning

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// ReportFilename is the report written when the pipeline runs to the end.
	ReportFilename = "deployment_report.json"
	// PartialReportFilename is the report written when a fatal stage aborts.
	PartialReportFilename = "deployment_report_partial.json"
	// MetricsFilename is the Prometheus textfile written next to the report.
	MetricsFilename = "metrics.prom"
)

// Recorder persists a report into a run directory.
type Recorder struct {
	Dir     string
	Metrics *Metrics
	Now     func() time.Time

	mu sync.Mutex
}

// NewRecorder creates a recorder writing into dir.
func NewRecorder(dir string, metrics *Metrics) *Recorder {
	return &Recorder{Dir: dir, Metrics: metrics, Now: time.Now}
}

// Flush stamps the report as complete and writes it. partial selects the
// abort variant of the filename. The returned path is the report file.
func (r *Recorder) Flush(report *Report, partial bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	report.Complete(now())

	name := ReportFilename
	if partial {
		name = PartialReportFilename
	}
	path := filepath.Join(r.Dir, name)
	if err := WriteJSON(path, report); err != nil {
		return "", err
	}

	if r.Metrics != nil {
		if err := r.Metrics.WriteTextfile(filepath.Join(r.Dir, MetricsFilename)); err != nil {
			return path, fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return path, nil
}

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
