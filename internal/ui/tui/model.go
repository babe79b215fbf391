package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/ui/benchmarks"
)

const maxLogLines = 6

// StageRow is the display state of one pipeline stage.
type StageRow struct {
	Name      string
	Outcome   provisioning.Outcome
	Active    bool
	Detail    string
	StartedAt time.Time
	Duration  time.Duration
}

// Finished reports whether the stage has an outcome.
func (r StageRow) Finished() bool { return r.Outcome != "" }

// Model is the Bubble Tea model for the deploy dashboard.
type Model struct {
	Project string
	Zone    string

	Stages   []StageRow
	Logs     []string
	Warnings int

	// ETA
	EstimatedRemaining time.Duration
	PerformanceScale   float64
	StartTime          time.Time
	Now                func() time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
	State  provisioning.State
	Quit   bool
}

// NewDeployModel creates a model listing stages in execution order.
func NewDeployModel(project, zone string, stages []string) Model {
	rows := make([]StageRow, len(stages))
	for i, name := range stages {
		rows[i] = StageRow{Name: name}
	}
	return Model{
		Project:          project,
		Zone:             zone,
		Stages:           rows,
		StartTime:        time.Now(),
		Now:              time.Now,
		PerformanceScale: 1.0,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StageMsg:
		m.updateStage(msg)
		m.updateETA()

	case LogMsg:
		if msg.Warning {
			m.Warnings++
		}
		m.Logs = append(m.Logs, msg.Line)
		if len(m.Logs) > maxLogLines {
			m.Logs = m.Logs[len(m.Logs)-maxLogLines:]
		}

	case TickMsg:
		m.SpinnerFrame++
		m.updateETA()
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		m.State = msg.State
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updateStage(msg StageMsg) {
	idx := -1
	for i, row := range m.Stages {
		if row.Name == msg.Stage {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	row := &m.Stages[idx]

	at := msg.At
	if at.IsZero() {
		at = m.now()
	}

	switch msg.Type {
	case provisioning.EventPhaseStarted:
		row.Active = true
		row.StartedAt = at
		return
	case provisioning.EventPhaseCompleted:
		row.Outcome = provisioning.OutcomeSuccess
	case provisioning.EventPhasePartial:
		row.Outcome = provisioning.OutcomePartial
		row.Detail = msg.Message
	case provisioning.EventPhaseSkipped:
		row.Outcome = provisioning.OutcomeSkipped
		row.Detail = msg.Message
	case provisioning.EventPhaseFailed:
		row.Outcome = provisioning.OutcomeFailed
		row.Detail = msg.Message
	default:
		return
	}
	row.Active = false
	if !row.StartedAt.IsZero() {
		row.Duration = at.Sub(row.StartedAt)
	}
}

func (m *Model) updateETA() {
	current, ok := m.activeStage()
	if !ok {
		m.EstimatedRemaining = 0
		return
	}

	order := make([]string, len(m.Stages))
	var history []benchmarks.StageTiming
	for i, row := range m.Stages {
		order[i] = row.Name
		if row.Finished() && row.Outcome != provisioning.OutcomeSkipped {
			history = append(history, benchmarks.StageTiming{Stage: row.Name, Duration: row.Duration})
		}
	}
	elapsed := m.now().Sub(current.StartedAt)

	m.PerformanceScale = benchmarks.PerformanceScale(current.Name, elapsed, history)
	m.EstimatedRemaining = benchmarks.EstimateRemainingWithScale(order, current.Name, elapsed, history, m.PerformanceScale)
}

func (m Model) activeStage() (StageRow, bool) {
	for _, row := range m.Stages {
		if row.Active {
			return row, true
		}
	}
	return StageRow{}, false
}

func (m Model) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
