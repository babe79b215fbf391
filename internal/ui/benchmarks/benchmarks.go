// Package benchmarks provides timing estimates for deploy stages.
package benchmarks

import "time"

// DefaultTimings are median stage durations from Geneva runs with a three
// node pool (seconds).
var DefaultTimings = map[string]int{
	"image_build":      90,
	"image_push":       45,
	"security_group":   5,
	"managed_services": 5,
	"cluster":          240,
	"nodepool":         30,
	"security_attach":  180,
	"kubeconfig":       5,
	"load_balancer":    5,
	"namespace":        2,
	"pull_secret":      2,
	"node_readiness":   90,
	"manifests":        5,
	"pod_verification": 60,
	"credentials":      240,
}

// StageTiming is the observed duration of a finished stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// EstimateRemaining calculates the estimated time remaining based on the
// stage order, the current stage, its elapsed time, and finished stages.
func EstimateRemaining(order []string, current string, elapsed time.Duration, history []StageTiming) time.Duration {
	return EstimateRemainingWithScale(order, current, elapsed, history, PerformanceScale(current, elapsed, history))
}

// EstimateRemainingWithScale calculates ETA while applying a performance scale factor.
func EstimateRemainingWithScale(order []string, current string, elapsed time.Duration, history []StageTiming, scale float64) time.Duration {
	currentIdx := -1
	for i, s := range order {
		if s == current {
			currentIdx = i
			break
		}
	}
	if currentIdx < 0 {
		return 0
	}

	var remaining time.Duration
	if expected, ok := expectedDuration(current); ok {
		expected = time.Duration(float64(expected) * scale)
		if expected > elapsed {
			remaining += expected - elapsed
		}
	}

	finished := make(map[string]bool, len(history))
	for _, rec := range history {
		finished[rec.Stage] = true
	}
	for _, stage := range order[currentIdx+1:] {
		if finished[stage] {
			continue
		}
		if expected, ok := expectedDuration(stage); ok {
			remaining += time.Duration(float64(expected) * scale)
		}
	}
	return remaining
}

// PerformanceScale derives a speed multiplier from observed-vs-expected durations.
// Example: expected 4m, observed 6m => scale=1.5 (future ETAs are stretched by 50%).
func PerformanceScale(current string, elapsed time.Duration, history []StageTiming) float64 {
	var expectedTotal, actualTotal time.Duration
	for _, rec := range history {
		expected, ok := expectedDuration(rec.Stage)
		if !ok {
			continue
		}
		expectedTotal += expected
		actualTotal += rec.Duration
	}

	// An overrunning current stage counts immediately so the ETA adapts.
	if expected, ok := expectedDuration(current); ok && elapsed > expected {
		expectedTotal += expected
		actualTotal += elapsed
	}

	if expectedTotal == 0 || actualTotal == 0 {
		return 1.0
	}
	scale := float64(actualTotal) / float64(expectedTotal)
	if scale < 0.6 {
		return 0.6
	}
	if scale > 3.0 {
		return 3.0
	}
	return scale
}

// TotalEstimate returns the expected duration of the given stages.
func TotalEstimate(order []string) time.Duration {
	var total time.Duration
	for _, stage := range order {
		if d, ok := expectedDuration(stage); ok {
			total += d
		}
	}
	return total
}

func expectedDuration(stage string) (time.Duration, bool) {
	secs, ok := DefaultTimings[stage]
	if !ok {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
