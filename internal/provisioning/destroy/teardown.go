package destroy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

const phaseTeardown = "teardown"

// RunOptions controls a teardown run.
type RunOptions struct {
	DryRun bool
	Force  bool
	// Confirm asks the operator before deleting n targets. Nil proceeds
	// without asking, as does Force.
	Confirm    func(n int) (bool, error)
	OutputsDir string
	Project    string
	Zone       string
}

// Status is how a teardown run ended.
type Status string

const (
	StatusClean     Status = "clean"
	StatusDryRun    Status = "dry-run"
	StatusAborted   Status = "aborted"
	StatusCompleted Status = "completed"
)

// Result is what Run returns to the command layer.
type Result struct {
	Status    Status
	Inventory Inventory
	Summary   Summary
	Residual  Inventory
	// Unverified lists kinds that could not be listed, so their state is unknown.
	Unverified []Kind
	Report     *TeardownReport
	ReportPath string
}

// Run discovers, confirms, deletes, verifies, and writes the teardown report.
// Database, bucket and load balancer listing failures are recorded as
// unverified kinds and the run continues with what was found. Only a failed
// cluster or security group listing, or a failed prompt, returns an error.
func (e *Engine) Run(ctx context.Context, scope Scope, opts RunOptions) (Result, error) {
	started := e.Now()

	inv, err := e.Discover(ctx, scope)
	skipped, err := splitListingErrors(err)
	if err != nil {
		return Result{Inventory: inv}, fmt.Errorf("discovery failed: %w", err)
	}
	res := Result{Inventory: inv, Residual: Inventory{}}
	for _, le := range skipped {
		provisioning.LogWarning(e.Observer, phaseDiscover, fmt.Sprintf("%v, %s resources are not verified", le, le.Kind))
		res.Unverified = addKind(res.Unverified, le.Kind)
	}

	total := inv.CloudCount()
	if total == 0 {
		if len(res.Unverified) == 0 {
			e.Observer.Printf("[%s] no %s resources found, environment is clean", phaseTeardown, scope.Slug)
		} else {
			e.Observer.Printf("[%s] no %s resources found in the kinds that could be listed", phaseTeardown, scope.Slug)
		}
		res.Status = StatusClean
		return res, nil
	}
	if opts.DryRun {
		e.Observer.Printf("[%s] dry run: would delete %d resources", phaseTeardown, total)
		res.Status = StatusDryRun
		return res, nil
	}
	if !opts.Force && opts.Confirm != nil {
		ok, err := opts.Confirm(total)
		if err != nil {
			return res, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			e.Observer.Printf("[%s] cancelled by user", phaseTeardown)
			res.Status = StatusAborted
			return res, nil
		}
	}

	report := newTeardownReport(opts, scope, started)
	report.Discovered = append(report.Discovered, inv.Ordered()...)

	res.Summary = e.DeleteAll(ctx, inv)
	report.Deleted = append(report.Deleted, res.Summary.Deleted...)
	report.Errors = append(report.Errors, res.Summary.Failures...)
	report.ManualCleanup = append(report.ManualCleanup, res.Summary.ManualCleanup...)

	residual, verr := e.Verify(ctx, scope)
	if residual != nil {
		res.Residual = residual
	}
	if verr != nil {
		provisioning.LogWarning(e.Observer, phaseTeardown, fmt.Sprintf("verification incomplete: %v", verr))
		var cerr *CleanupError
		if errors.As(verr, &cerr) {
			for _, lerr := range cerr.Errors {
				var le *ListingError
				if errors.As(lerr, &le) {
					res.Unverified = addKind(res.Unverified, le.Kind)
				}
			}
		}
	}
	report.Residual = append(report.Residual, res.Residual.Ordered()...)
	report.Unverified = append(report.Unverified, res.Unverified...)
	report.Clean = verr == nil && len(res.Unverified) == 0 && res.Residual.Count() == 0
	if report.Clean {
		e.Observer.Printf("[%s] all %s resources deleted, environment is clean", phaseTeardown, scope.Slug)
	} else {
		for _, t := range res.Residual.Ordered() {
			provisioning.LogWarning(e.Observer, phaseTeardown, fmt.Sprintf("residual %s %s (%s)", t.Kind, t.Label(), t.ID))
		}
	}
	report.CompletedAt = e.Now().UTC()

	res.Status = StatusCompleted
	res.Report = report
	if opts.OutputsDir != "" {
		path := TeardownReportPath(opts.OutputsDir, started)
		if err := report.write(path); err != nil {
			provisioning.LogWarning(e.Observer, phaseTeardown, fmt.Sprintf("failed to write teardown report: %v", err))
		} else {
			res.ReportPath = path
		}
		if err := e.Metrics.WriteTextfile(TeardownMetricsPath(opts.OutputsDir, started)); err != nil {
			provisioning.LogWarning(e.Observer, phaseTeardown, fmt.Sprintf("failed to write teardown metrics: %v", err))
		}
	}
	return res, nil
}

func addKind(kinds []Kind, k Kind) []Kind {
	if slices.Contains(kinds, k) {
		return kinds
	}
	return append(kinds, k)
}

// ErrNoKubeconfig is returned by LatestKubeconfig when no run directory
// holds a kubeconfig.
var ErrNoKubeconfig = errors.New("no kubeconfig found")

// LatestKubeconfig returns the kubeconfig of the newest run directory under
// outputsDir. Run directories are named by timestamp, so lexical order is
// chronological.
func LatestKubeconfig(outputsDir, filename string) (string, error) {
	entries, err := os.ReadDir(outputsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoKubeconfig
		}
		return "", fmt.Errorf("failed to read %s: %w", outputsDir, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	for _, d := range dirs {
		path := filepath.Join(outputsDir, d, filename)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrNoKubeconfig
}
