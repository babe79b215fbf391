package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// RunFunc runs the pipeline with the dashboard observer. ctx is cancelled
// when the operator quits the dashboard.
type RunFunc func(ctx context.Context, observer provisioning.Observer) provisioning.PipelineResult

// RunDeployTUI wraps a pipeline run with a Bubble Tea dashboard and returns
// the pipeline result once the run has finished.
func RunDeployTUI(ctx context.Context, project, zone string, stages []string, run RunFunc) (provisioning.PipelineResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewDeployModel(project, zone, stages)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	resultCh := make(chan provisioning.PipelineResult, 1)
	go func() {
		res := run(runCtx, NewObserver(p.Send))
		resultCh <- res
		p.Send(DoneMsg{State: res.State})
	}()

	finalModel, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-resultCh
		return provisioning.PipelineResult{}, fmt.Errorf("TUI error: %w", err)
	}

	// Quitting early cancels the run; the pipeline still writes its report.
	if fm, ok := finalModel.(Model); !ok || !fm.Done {
		cancel()
	}
	return <-resultCh, nil
}
