// Package tui provides a Bubble Tea dashboard for deploy runs.
package tui

import (
	"time"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// StageMsg reports a stage lifecycle event.
type StageMsg struct {
	Stage   string
	Type    provisioning.EventType
	Message string
	At      time.Time
}

// LogMsg carries one line of run output.
type LogMsg struct {
	Line    string
	Warning bool
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the pipeline returned.
type DoneMsg struct {
	State provisioning.State
}
