package provisioning

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during a run.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a stage
	Progress(stage string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured run event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Stage name (e.g., "security_group", "cluster")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of run event.
type EventType string

const (
	// EventPhaseStarted indicates a stage has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a stage completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhasePartial indicates a stage completed in a degraded state.
	EventPhasePartial EventType = "phase.partial"
	// EventPhaseSkipped indicates a stage did not run.
	EventPhaseSkipped EventType = "phase.skipped"
	// EventPhaseFailed indicates a stage failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceFailed indicates resource creation failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted successfully.
	EventResourceDeleted EventType = "resource.deleted"

	// EventValidationWarning indicates a warning that does not stop the run.
	EventValidationWarning EventType = "validation.warning"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// ConsoleObserver implements Observer on a zerolog console writer, so every
// line carries a timestamp.
type ConsoleObserver struct {
	log           zerolog.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates an observer writing to stdout.
func NewConsoleObserver() *ConsoleObserver {
	return NewConsoleObserverTo(os.Stdout)
}

// NewConsoleObserverTo creates an observer writing human-readable lines to w.
func NewConsoleObserverTo(w io.Writer) *ConsoleObserver {
	writer := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    w != os.Stdout && w != os.Stderr,
	}
	return &ConsoleObserver{
		log:           zerolog.New(writer).With().Timestamp().Logger(),
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	o.withContext(o.log.Info()).Msgf(format, v...)
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var e *zerolog.Event
	switch event.Type {
	case EventPhaseFailed, EventResourceFailed:
		e = o.log.Error()
	case EventPhasePartial, EventValidationWarning:
		e = o.log.Warn()
	default:
		e = o.log.Info()
	}
	e = o.withContext(e).Str("event", string(event.Type))
	if event.Phase != "" {
		e = e.Str("stage", event.Phase)
	}
	if event.Resource != "" {
		e = e.Str("resource", event.Resource)
	}
	for _, k := range sortedKeys(event.Fields) {
		e = e.Str(k, event.Fields[k])
	}
	e.Time("at", event.Timestamp).Msg(event.Message)
}

// Progress implements Observer interface.
func (o *ConsoleObserver) Progress(stage string, current, total int) {
	e := o.withContext(o.log.Info()).Str("stage", stage).Int("current", current).Int("total", total)
	if total > 0 {
		e = e.Int("percent", (current*100)/total)
	}
	e.Msg("progress")
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &ConsoleObserver{log: o.log, contextFields: newFields}
}

func (o *ConsoleObserver) withContext(e *zerolog.Event) *zerolog.Event {
	for _, k := range sortedKeys(o.contextFields) {
		e = e.Str(k, o.contextFields[k])
	}
	return e
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Helper functions for common events

// LogPhaseStart logs a stage start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a stage completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhasePartial logs a stage that finished degraded.
func LogPhasePartial(observer Observer, phase string, duration time.Duration, err error) {
	msg := fmt.Sprintf("partially completed in %v", duration.Round(time.Millisecond))
	if err != nil {
		msg += fmt.Sprintf(": %v", err)
	}
	observer.Event(Event{
		Type:    EventPhasePartial,
		Phase:   phase,
		Message: msg,
	})
}

// LogPhaseSkipped logs a stage that did not run.
func LogPhaseSkipped(observer Observer, phase, reason string) {
	observer.Event(Event{
		Type:    EventPhaseSkipped,
		Phase:   phase,
		Message: "skipped: " + reason,
	})
}

// LogPhaseFailed logs a stage failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogWarning logs a non-fatal warning.
func LogWarning(observer Observer, phase, message string) {
	observer.Event(Event{
		Type:    EventValidationWarning,
		Phase:   phase,
		Message: message,
	})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceExists logs when a resource already exists.
func LogResourceExists(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s already exists", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("deleting %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s deleted", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}
