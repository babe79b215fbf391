package provisioning

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// Outcome is the result class of a single stage.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// StageResult is what a stage reports back to the sequencer.
type StageResult struct {
	Outcome Outcome
	Detail  map[string]any
	Err     error
}

// Success builds a successful result.
func Success(detail map[string]any) StageResult {
	return StageResult{Outcome: OutcomeSuccess, Detail: detail}
}

// Partial builds a degraded result. err explains what was degraded and may be nil.
func Partial(err error, detail map[string]any) StageResult {
	return StageResult{Outcome: OutcomePartial, Detail: detail, Err: err}
}

// Skipped builds a result for a stage that had nothing to do.
func Skipped(reason string) StageResult {
	return StageResult{Outcome: OutcomeSkipped, Detail: map[string]any{"reason": reason}}
}

// Failed builds a failed result.
func Failed(err error) StageResult {
	return StageResult{Outcome: OutcomeFailed, Err: err}
}

// Stage is one step of the pipeline. A failed fatal stage aborts the run; a
// failed soft stage is recorded and the run continues.
type Stage struct {
	Name  string
	Fatal bool
	Run   func(ctx *Context) StageResult
}

// State is the lifecycle state of a stage or of the whole pipeline.
type State string

const (
	StatePending          State = "pending"
	StateRunning          State = "running"
	StateSucceeded        State = "succeeded"
	StatePartialSucceeded State = "partial_succeeded"
	StateFailed           State = "failed"
	// StateAborted is only reached by the pipeline, after a fatal stage fails.
	StateAborted State = "aborted"
)

// StageReport is the in-memory record of one executed stage.
type StageReport struct {
	Name     string
	Fatal    bool
	State    State
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// PipelineResult is the result of a sequencer run.
type PipelineResult struct {
	State       State
	Stages      []StageReport
	FailedStage string
	ReportPath  string
	Err         error
}

// ExitCode maps the pipeline state to a process exit code.
func (r PipelineResult) ExitCode() int {
	switch r.State {
	case StateSucceeded, StatePartialSucceeded:
		return 0
	default:
		return 1
	}
}

// Sequencer runs stages in order and persists the report on every path.
type Sequencer struct {
	Recorder *Recorder
	Metrics  *Metrics
	Now      func() time.Time
}

// NewSequencer creates a sequencer flushing through rec.
func NewSequencer(rec *Recorder) *Sequencer {
	s := &Sequencer{Recorder: rec, Now: time.Now}
	if rec != nil {
		s.Metrics = rec.Metrics
	}
	return s
}

// Run executes stages once, in order. A fatal failure stops the run and
// writes exactly one partial report; otherwise the final report is written
// after the last stage.
func (s *Sequencer) Run(ctx *Context, stages []Stage) PipelineResult {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	result := PipelineResult{State: StateRunning}
	ctx.Report.SetStatus(string(StateRunning))
	ctx.Observer.Printf("Starting pipeline with %d stages...", len(stages))

	degraded := false
	for i, stage := range stages {
		name := fmt.Sprintf("%s (%d/%d)", stage.Name, i+1, len(stages))

		var res StageResult
		stageStart := now()
		if err := ctx.Err(); err != nil {
			res = Failed(fmt.Errorf("run cancelled before stage: %w", err))
		} else {
			LogPhaseStart(ctx.Observer, name)
			res = runStage(ctx, stage)
		}
		elapsed := now().Sub(stageStart)

		sr := StageReport{
			Name:     stage.Name,
			Fatal:    stage.Fatal,
			State:    stageState(res.Outcome),
			Outcome:  res.Outcome,
			Err:      res.Err,
			Duration: elapsed,
		}
		result.Stages = append(result.Stages, sr)
		s.record(ctx, stage, res, elapsed)

		switch res.Outcome {
		case OutcomeSuccess:
			LogPhaseComplete(ctx.Observer, name, elapsed)
		case OutcomeSkipped:
			LogPhaseSkipped(ctx.Observer, name, fmt.Sprint(res.Detail["reason"]))
		case OutcomePartial:
			degraded = true
			LogPhasePartial(ctx.Observer, name, elapsed, res.Err)
		case OutcomeFailed:
			LogPhaseFailed(ctx.Observer, name, res.Err)
			if stage.Fatal {
				result.State = StateAborted
				result.FailedStage = stage.Name
				result.Err = fmt.Errorf("%s stage failed: %w", stage.Name, res.Err)
				ctx.Report.SetStatus(string(StateAborted))
				result.ReportPath = s.flush(ctx, true, &result)
				ctx.Observer.Printf("Pipeline aborted at %s after %v", stage.Name, now().Sub(start).Round(time.Millisecond))
				return result
			}
			degraded = true
			ctx.Report.Warn("stage %s failed (continuing): %v", stage.Name, res.Err)
		}
	}

	result.State = StateSucceeded
	if degraded {
		result.State = StatePartialSucceeded
	}
	ctx.Report.SetStatus(string(result.State))
	result.ReportPath = s.flush(ctx, false, &result)
	ctx.Observer.Printf("Pipeline %s in %v", result.State, now().Sub(start).Round(time.Millisecond))
	return result
}

func (s *Sequencer) record(ctx *Context, stage Stage, res StageResult, elapsed time.Duration) {
	rec := StageRecord{
		Status:   string(res.Outcome),
		Fatal:    stage.Fatal,
		Detail:   res.Detail,
		Duration: elapsed.Round(time.Millisecond).String(),
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	ctx.Report.RecordStage(stage.Name, rec)
	s.Metrics.ObserveStage(stage.Name, res.Outcome, elapsed)
}

func (s *Sequencer) flush(ctx *Context, partial bool, result *PipelineResult) string {
	if s.Recorder == nil {
		return ""
	}
	path, err := s.Recorder.Flush(ctx.Report, partial)
	if err != nil {
		ctx.Observer.Printf("[Report] failed to write report: %v", err)
		if path == "" {
			result.Err = errors.Join(result.Err, err)
			if result.State != StateAborted {
				result.State = StateFailed
			}
		}
	}
	return path
}

// runStage runs one stage, converting a panic into a failed outcome.
func runStage(ctx *Context, stage Stage) (res StageResult) {
	defer func() {
		if r := recover(); r != nil {
			ctx.Observer.Printf("[%s] panic: %v\n%s", stage.Name, r, debug.Stack())
			res = Failed(fmt.Errorf("stage %s panicked: %v", stage.Name, r))
		}
	}()
	if stage.Run == nil {
		return Skipped("no action")
	}
	res = stage.Run(ctx)
	if res.Outcome == "" {
		if res.Err != nil {
			res.Outcome = OutcomeFailed
		} else {
			res.Outcome = OutcomeSuccess
		}
	}
	if res.Outcome == OutcomeFailed && res.Err == nil {
		res.Err = errors.New("stage reported failure without an error")
	}
	return res
}

func stageState(o Outcome) State {
	switch o {
	case OutcomeSuccess, OutcomeSkipped:
		return StateSucceeded
	case OutcomePartial:
		return StatePartialSucceeded
	default:
		return StateFailed
	}
}
