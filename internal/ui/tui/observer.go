package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// Observer forwards pipeline events to the dashboard.
type Observer struct {
	send   func(tea.Msg)
	fields map[string]string
	now    func() time.Time
}

var _ provisioning.Observer = (*Observer)(nil)

// NewObserver returns an observer that delivers messages through send,
// usually tea.Program.Send.
func NewObserver(send func(tea.Msg)) *Observer {
	return &Observer{send: send, fields: map[string]string{}, now: time.Now}
}

func (o *Observer) Printf(format string, v ...interface{}) {
	o.send(LogMsg{Line: o.prefix() + fmt.Sprintf(format, v...)})
}

func (o *Observer) Event(event provisioning.Event) {
	at := event.Timestamp
	if at.IsZero() {
		at = o.now()
	}
	switch event.Type {
	case provisioning.EventPhaseStarted, provisioning.EventPhaseCompleted, provisioning.EventPhasePartial,
		provisioning.EventPhaseSkipped, provisioning.EventPhaseFailed:
		o.send(StageMsg{Stage: event.Phase, Type: event.Type, Message: event.Message, At: at})
	case provisioning.EventValidationWarning, provisioning.EventResourceFailed:
		o.send(LogMsg{Line: o.prefix() + fmt.Sprintf("[%s] %s", event.Phase, event.Message), Warning: true})
	default:
		line := fmt.Sprintf("[%s] %s", event.Phase, event.Message)
		if event.Resource != "" {
			line += " " + event.Resource
		}
		o.send(LogMsg{Line: o.prefix() + line})
	}
}

func (o *Observer) Progress(stage string, current, total int) {
	o.send(LogMsg{Line: o.prefix() + fmt.Sprintf("[%s] %d/%d", stage, current, total)})
}

func (o *Observer) WithFields(fields map[string]string) provisioning.Observer {
	merged := make(map[string]string, len(o.fields)+len(fields))
	for k, v := range o.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Observer{send: o.send, fields: merged, now: o.now}
}

func (o *Observer) prefix() string {
	if len(o.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + o.fields[k]
	}
	return strings.Join(parts, " ") + " "
}
