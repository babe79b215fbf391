// Package ui renders run summaries and operator prompts.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/destroy"
)

// DeploySummary renders the final deploy summary from the persisted report.
func DeploySummary(snap provisioning.Snapshot, reportPath string) string {
	var b strings.Builder

	title := fmt.Sprintf("exodeploy: %s", snap.Project)
	if snap.Zone != "" {
		title += fmt.Sprintf(" (%s)", snap.Zone)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString(" ")
	b.WriteString(statusLabel(snap.Status))
	b.WriteString("\n")
	if snap.Image != "" {
		fmt.Fprintf(&b, "  image %s\n", snap.Image)
	}

	b.WriteString(sectionStyle.Render("  Stages"))
	b.WriteString("\n")
	for _, name := range snap.StageOrder {
		rec := snap.Stages[name]
		line := fmt.Sprintf("  %s %-18s %s", stageMark(rec.Status), name, dimStyle.Render(rec.Duration))
		if rec.Error != "" {
			line += " " + failedStyle.Render(rec.Error)
		}
		b.WriteString(line + "\n")
	}

	if len(snap.Resources) > 0 {
		b.WriteString(sectionStyle.Render("  Resources"))
		b.WriteString("\n")
		kinds := make([]string, 0, len(snap.Resources))
		for k := range snap.Resources {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			d := snap.Resources[k]
			line := fmt.Sprintf("  %-16s %s", k, d.Name)
			if d.ID != "" && d.ID != d.Name {
				line += dimStyle.Render(" (" + d.ID + ")")
			}
			if d.State != "" {
				line += " " + dimStyle.Render(d.State)
			}
			b.WriteString(line + "\n")
		}
	}

	renderWarnings(&b, snap.Warnings)
	renderFooter(&b, "Report", reportPath)
	return b.String()
}

// TeardownSummary renders the outcome of a teardown run.
func TeardownSummary(res destroy.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("exodeploy teardown"))
	b.WriteString(" ")

	switch res.Status {
	case destroy.StatusClean:
		b.WriteString(readyStyle.Render("Clean"))
		b.WriteString("\n  nothing to delete\n")
		renderUnverified(&b, res.Unverified)
		return b.String()
	case destroy.StatusDryRun:
		b.WriteString(warningStyle.Render("Dry run"))
		b.WriteString("\n")
		renderTargets(&b, "Would delete", res.Inventory.Ordered())
		return b.String()
	case destroy.StatusAborted:
		b.WriteString(dimStyle.Render("Cancelled"))
		b.WriteString("\n")
		return b.String()
	}

	clean := res.Report != nil && res.Report.Clean
	switch {
	case clean:
		b.WriteString(readyStyle.Render("Complete"))
	case res.Residual.Count() == 0 && len(res.Summary.Failures) == 0 && len(res.Unverified) > 0:
		b.WriteString(warningStyle.Render("Incomplete verification"))
	default:
		b.WriteString(warningStyle.Render("Residual resources"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  deleted %d, errors %d\n", len(res.Summary.Deleted), len(res.Summary.Failures))

	if len(res.Summary.Deleted) > 0 {
		b.WriteString(sectionStyle.Render("  Deleted"))
		b.WriteString("\n")
		for _, d := range res.Summary.Deleted {
			note := ""
			if d.AlreadyGone {
				note = dimStyle.Render(" already gone")
			}
			fmt.Fprintf(&b, "  %s %-16s %s%s\n", readyStyle.Render(checkMark), d.Kind, d.Label(), note)
		}
	}
	if len(res.Summary.Failures) > 0 {
		b.WriteString(sectionStyle.Render("  Errors"))
		b.WriteString("\n")
		for _, f := range res.Summary.Failures {
			fmt.Fprintf(&b, "  %s %-16s %s %s\n", failedStyle.Render(crossMark), f.Kind, f.Label(), failedStyle.Render(f.Error))
		}
	}
	if len(res.Summary.ManualCleanup) > 0 {
		renderTargets(&b, "Manual cleanup (Exoscale console)", res.Summary.ManualCleanup)
	}
	if res.Residual.Count() > 0 {
		renderTargets(&b, "Residual", res.Residual.Ordered())
	} else {
		b.WriteString(sectionStyle.Render("  Verification"))
		b.WriteString("\n  " + readyStyle.Render("no residual resources") + "\n")
	}
	renderUnverified(&b, res.Unverified)

	renderFooter(&b, "Teardown report", res.ReportPath)
	return b.String()
}

func renderTargets(b *strings.Builder, title string, targets []destroy.Target) {
	b.WriteString(sectionStyle.Render("  " + title))
	b.WriteString("\n")
	for _, t := range targets {
		line := fmt.Sprintf("  %s %-16s %s", warnMark, t.Kind, t.Label())
		if t.ID != "" && t.ID != t.Name {
			line += dimStyle.Render(" (" + t.ID + ")")
		}
		b.WriteString(line + "\n")
	}
}

func renderUnverified(b *strings.Builder, kinds []destroy.Kind) {
	if len(kinds) == 0 {
		return
	}
	b.WriteString(sectionStyle.Render("  Not verified"))
	b.WriteString("\n")
	for _, k := range kinds {
		b.WriteString("  " + warningStyle.Render(fmt.Sprintf("%s %s could not be listed, check the Exoscale console", warnMark, k)) + "\n")
	}
}

func renderWarnings(b *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString(sectionStyle.Render("  Warnings"))
	b.WriteString("\n")
	for _, w := range warnings {
		b.WriteString("  " + warningStyle.Render(warnMark+" "+w) + "\n")
	}
}

func renderFooter(b *strings.Builder, label, path string) {
	if path == "" {
		return
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s: %s", label, path)))
	b.WriteString("\n")
}

func statusLabel(status string) string {
	switch provisioning.State(status) {
	case provisioning.StateSucceeded:
		return readyStyle.Render("Succeeded")
	case provisioning.StatePartialSucceeded:
		return warningStyle.Render("Partially succeeded")
	case provisioning.StateAborted, provisioning.StateFailed:
		return failedStyle.Render("Aborted")
	default:
		return dimStyle.Render(status)
	}
}

func stageMark(status string) string {
	switch provisioning.Outcome(status) {
	case provisioning.OutcomeSuccess:
		return readyStyle.Render(checkMark)
	case provisioning.OutcomePartial:
		return warningStyle.Render(warnMark)
	case provisioning.OutcomeSkipped:
		return dimStyle.Render(skipMark)
	default:
		return failedStyle.Render(crossMark)
	}
}
