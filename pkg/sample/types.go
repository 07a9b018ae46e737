package sample

import (
	"fmt"
	"time"
)

// TrialResult describes the value we record with each execution of the
// operation under test.
type TrialResult struct {
	DurationNanos int64  `json:"durationNanos"`
	Succeeded     bool   `json:"succeeded"`
	Err           string `json:"error,omitempty"`
}

// NewTrialResult converts the measured elapsed time to whole nanoseconds.
// A nil err marks the trial as succeeded.
func NewTrialResult(elapsed time.Duration, err error) TrialResult {
	if elapsed < 0 {
		elapsed = 0
	}
	r := TrialResult{
		DurationNanos: elapsed.Nanoseconds(),
		Succeeded:     err == nil,
	}
	if err != nil {
		r.Err = err.Error()
	}
	return r
}

// Duration returns the recorded elapsed time.
func (r TrialResult) Duration() time.Duration {
	return time.Duration(r.DurationNanos)
}

// SampleSet holds every TrialResult of one run, in execution order.
type SampleSet []TrialResult

// FailurePolicy decides whether failed trials take part in the statistics.
type FailurePolicy string

const (
	// IncludeFailures keeps the duration of failed trials.
	IncludeFailures FailurePolicy = "include"
	// ExcludeFailures drops failed trials before reduction.
	ExcludeFailures FailurePolicy = "exclude"
)

// ParseFailurePolicy accepts "include", "exclude" or the empty string, which
// maps to IncludeFailures.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", IncludeFailures:
		return IncludeFailures, nil
	case ExcludeFailures:
		return ExcludeFailures, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want include or exclude)", s)
	}
}

// Durations returns the durations selected by policy, in execution order.
// The receiver is not modified.
func (s SampleSet) Durations(policy FailurePolicy) []int64 {
	out := make([]int64, 0, len(s))
	for _, r := range s {
		if !r.Succeeded && policy == ExcludeFailures {
			continue
		}
		out = append(out, r.DurationNanos)
	}
	return out
}

// Failures counts the trials that did not succeed.
func (s SampleSet) Failures() int {
	n := 0
	for _, r := range s {
		if !r.Succeeded {
			n++
		}
	}
	return n
}
