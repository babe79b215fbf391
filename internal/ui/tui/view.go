package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderStages(&b, m)
	if len(m.Logs) > 0 {
		renderLogs(&b, m)
	}
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("exodeploy: %s", m.Project)
	if m.Zone != "" {
		title += fmt.Sprintf(" (%s)", m.Zone)
	}
	b.WriteString(headerStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += outcomeLooks[provisioning.OutcomeFailed].render(fmt.Sprintf("Error: %v", m.Err))
	case m.Done && m.State == provisioning.StateSucceeded:
		status += outcomeLooks[provisioning.OutcomeSuccess].render("Succeeded")
	case m.Done && m.State == provisioning.StatePartialSucceeded:
		status += outcomeLooks[provisioning.OutcomePartial].render("Partially succeeded")
	case m.Done:
		status += outcomeLooks[provisioning.OutcomeFailed].render("Aborted")
	default:
		if row, ok := m.activeStage(); ok {
			status += runningLook.render(currentSpinner(m.SpinnerFrame)+" ") + outcomeLooks[provisioning.OutcomePartial].render(row.Name)
		} else {
			status += mutedStyle.Render("Starting...")
		}
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := calculateProgress(m)
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = m.Width - 30
		if barWidth < 10 {
			barWidth = 10
		}
	}
	filled := int(float64(barWidth) * progress)
	if filled > barWidth {
		filled = barWidth
	}

	bar := barFilled.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", barWidth-filled))

	pct := int(progress * 100)
	eta := ""
	if m.EstimatedRemaining > 0 {
		eta = fmt.Sprintf(" ETA %s", formatDuration(m.EstimatedRemaining))
	}
	if m.PerformanceScale != 0 && m.PerformanceScale != 1.0 {
		eta += fmt.Sprintf("  speed x%.2f", m.PerformanceScale)
	}

	fmt.Fprintf(b, "  %s %d%%%s\n", bar, pct, eta)
}

func renderStages(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Stages"))
	b.WriteString("\n")

	for _, row := range m.Stages {
		mark, l := stageLook(row, m.SpinnerFrame)
		dur := ""
		switch {
		case row.Finished() && row.Duration > 0:
			dur = formatDuration(row.Duration)
		case row.Active:
			dur = formatDuration(m.now().Sub(row.StartedAt))
		}
		line := fmt.Sprintf("    %s %-18s %s", l.render(mark), l.render(row.Name), mutedStyle.Render(dur))
		if row.Detail != "" && row.Outcome != provisioning.OutcomeSuccess {
			line += " " + l.render(row.Detail)
		}
		b.WriteString(line + "\n")
	}
}

func renderLogs(b *strings.Builder, m Model) {
	title := "  Log"
	if m.Warnings > 0 {
		title += fmt.Sprintf(" (%d warnings)", m.Warnings)
	}
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	for _, line := range m.Logs {
		fmt.Fprintf(b, "    %s\n", mutedStyle.Render(line))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := formatDuration(m.now().Sub(m.StartTime))
	b.WriteString(footerStyle.Render(fmt.Sprintf("  elapsed: %s  |  q: quit", elapsed)))
	b.WriteString("\n")
}

// stageLook returns the marker and look for a stage row. A running stage
// shows the current spinner frame.
func stageLook(row StageRow, frame int) (string, look) {
	if l, ok := outcomeLooks[row.Outcome]; ok {
		return l.mark, l
	}
	if row.Active {
		return currentSpinner(frame), runningLook
	}
	return waitingLook.mark, waitingLook
}

func currentSpinner(frame int) string {
	if len(spinnerFrames) == 0 {
		return runningLook.mark
	}
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

// calculateProgress weights every stage equally; skipped stages count as done.
func calculateProgress(m Model) float64 {
	if m.Done && m.State != provisioning.StateAborted && m.State != provisioning.StateFailed {
		return 1.0
	}
	if len(m.Stages) == 0 {
		return 0
	}
	done := 0
	for _, row := range m.Stages {
		if row.Finished() {
			done++
		}
	}
	return float64(done) / float64(len(m.Stages))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
