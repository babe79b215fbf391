package poll

import (
	"context"
	"time"
)

// Outcome is the terminal state of a polling loop.
type Outcome int

const (
	// Completed means the check reported done before the deadline.
	Completed Outcome = iota
	// TimedOut means the deadline elapsed without the check reporting done.
	TimedOut
	// Failed means the check returned an error.
	Failed
	// Cancelled means the context ended while waiting.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CheckFunc reports whether the awaited condition holds. Returning an error
// stops polling with the Failed outcome.
type CheckFunc func(ctx context.Context) (done bool, err error)

// Options configures a polling loop.
type Options struct {
	Interval time.Duration
	Timeout  time.Duration

	// Sleep and Now default to real time. Tests replace both.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// Result describes how a polling loop ended.
type Result struct {
	Outcome  Outcome
	Attempts int
	Elapsed  time.Duration
	Err      error
}

// Until calls check immediately and then once per Interval until it reports
// done, returns an error, or Timeout elapses. A final check always runs at the
// deadline, so completion is observed at most one Interval late.
func Until(ctx context.Context, opts Options, check CheckFunc) Result {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}

	start := now()
	deadline := start.Add(opts.Timeout)
	res := Result{}

	for {
		res.Attempts++
		done, err := check(ctx)
		res.Elapsed = now().Sub(start)
		if err != nil {
			res.Outcome = Failed
			res.Err = err
			return res
		}
		if done {
			res.Outcome = Completed
			return res
		}

		remaining := deadline.Sub(now())
		if remaining <= 0 {
			res.Outcome = TimedOut
			return res
		}
		wait := interval
		if remaining < wait {
			wait = remaining
		}
		if err := sleep(ctx, wait); err != nil {
			res.Outcome = Cancelled
			res.Err = err
			res.Elapsed = now().Sub(start)
			return res
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
