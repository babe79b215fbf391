package destroy

import (
	"path/filepath"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/naming"
)

// TeardownReport is the JSON record of one teardown run.
type TeardownReport struct {
	Timestamp     string    `json:"timestamp"`
	Project       string    `json:"project"`
	Slug          string    `json:"slug"`
	Zone          string    `json:"zone"`
	DryRun        bool      `json:"dry_run"`
	Discovered    []Target  `json:"discovered"`
	Deleted       []Deleted `json:"deleted"`
	Errors        []Failure `json:"errors"`
	ManualCleanup []Target  `json:"manual_cleanup"`
	Residual      []Target  `json:"residual"`
	Unverified    []Kind    `json:"unverified"`
	Clean         bool      `json:"clean"`
	CompletedAt   time.Time `json:"completed_at"`
}

// TeardownReportPath returns <outputsDir>/teardown_report_<ts>.json.
func TeardownReportPath(outputsDir string, at time.Time) string {
	return filepath.Join(outputsDir, "teardown_report_"+naming.RunTimestamp(at)+".json")
}

// TeardownMetricsPath returns <outputsDir>/teardown_metrics_<ts>.prom.
func TeardownMetricsPath(outputsDir string, at time.Time) string {
	return filepath.Join(outputsDir, "teardown_metrics_"+naming.RunTimestamp(at)+".prom")
}

func newTeardownReport(opts RunOptions, scope Scope, started time.Time) *TeardownReport {
	return &TeardownReport{
		Timestamp:     naming.RunTimestamp(started),
		Project:       opts.Project,
		Slug:          scope.Slug,
		Zone:          opts.Zone,
		DryRun:        opts.DryRun,
		Discovered:    []Target{},
		Deleted:       []Deleted{},
		Errors:        []Failure{},
		ManualCleanup: []Target{},
		Residual:      []Target{},
		Unverified:    []Kind{},
	}
}

func (r *TeardownReport) write(path string) error {
	return provisioning.WriteJSON(path, r)
}
