package trial

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/cloud-bulldozer/search-bench/pkg/logging"
	"github.com/cloud-bulldozer/search-bench/pkg/sample"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// ErrInvalidRuns is returned when the run count is not positive.
var ErrInvalidRuns = errors.New("number of runs must be > 0")

// Operation is one unit of work under test, typically one search request.
type Operation interface {
	Invoke(ctx context.Context) error
}

// OperationFunc adapts a plain function to Operation.
type OperationFunc func(ctx context.Context) error

// Invoke calls f(ctx).
func (f OperationFunc) Invoke(ctx context.Context) error {
	return f(ctx)
}

// Runner executes trials one after another on the calling goroutine.
type Runner struct {
	// Clock defaults to the real monotonic clock.
	Clock clock.PassiveClock
	// Timeout bounds a single trial when > 0. Zero waits for completion.
	Timeout time.Duration
}

// NewRunner returns a Runner on the real clock.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{Clock: clock.RealClock{}, Timeout: timeout}
}

// Run executes op n times and returns exactly n results in execution order.
// A failing trial is recorded and does not stop the run. If ctx is done
// between two trials the partial set is discarded and ctx.Err() returned.
func (r *Runner) Run(ctx context.Context, n int, op Operation) (sample.SampleSet, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRuns, n)
	}
	if op == nil {
		return nil, errors.New("no operation to run")
	}
	clk := r.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	set := make(sample.SampleSet, 0, n)
	step := n / 10
	failed := 0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted after %d of %d trials: %w", i, n, err)
		}
		res := r.once(ctx, clk, op)
		entry := log.WithFields(logrus.Fields{"trial": i + 1, "nanos": res.DurationNanos})
		if !res.Succeeded {
			failed++
			entry.WithField("error", res.Err).Debug("Trial failed")
		} else {
			entry.Debug("Trial done")
		}
		set = append(set, res)
		if step > 0 && (i+1)%step == 0 {
			log.Infof("⏱️  %d/%d trials done (%d failed)", i+1, n, failed)
		}
	}
	return set, nil
}

// once times a single invocation. The clock is read immediately around
// Invoke so that the per-trial context setup is not measured.
func (r *Runner) once(ctx context.Context, clk clock.PassiveClock, op Operation) (res sample.TrialResult) {
	tctx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := clk.Now()
	defer func() {
		if p := recover(); p != nil {
			res = sample.NewTrialResult(clk.Since(start), fmt.Errorf("operation panicked: %v", p))
		}
	}()
	err := op.Invoke(tctx)
	elapsed := clk.Since(start)
	if err == nil && r.Timeout > 0 && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("trial exceeded %s: %w", r.Timeout, tctx.Err())
	}
	return sample.NewTrialResult(elapsed, err)
}
