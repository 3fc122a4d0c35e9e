// Package budget bounds iterative algorithms by an iteration count, a wall
// clock timeout and context cancellation, whichever comes first.
package budget

import (
	"context"
	"time"
)

// StopReason explains why an algorithm returned.
type StopReason string

const (
	// StopExhausted means the algorithm ran out of work on its own.
	StopExhausted  StopReason = "exhausted"
	StopIterations StopReason = "iterations"
	StopTimeout    StopReason = "timeout"
	StopCancelled  StopReason = "cancelled"
)

// Budget limits an algorithm run. Zero fields mean unlimited.
type Budget struct {
	Iterations int           `json:"iterations"`
	Timeout    time.Duration `json:"timeout"`
}

// Stats summarizes a finished run.
type Stats struct {
	Iterations   int           `json:"iterations"`
	Improvements int           `json:"improvements"`
	Stop         StopReason    `json:"stop"`
	Duration     time.Duration `json:"duration"`
}

// Tracker counts iterations against a Budget.
type Tracker struct {
	ctx          context.Context
	limit        int
	start        time.Time
	deadline     time.Time
	iterations   int
	improvements int
	reason       StopReason
	now          func() time.Time
}

// Start begins tracking b. A nil ctx is treated as context.Background.
func (b Budget) Start(ctx context.Context) *Tracker {
	return b.startAt(ctx, time.Now)
}

func (b Budget) startAt(ctx context.Context, now func() time.Time) *Tracker {
	if ctx == nil {
		ctx = context.Background()
	}
	t := &Tracker{ctx: ctx, limit: b.Iterations, start: now(), now: now}
	if b.Timeout > 0 {
		t.deadline = t.start.Add(b.Timeout)
	}
	return t
}

// Next reports whether another iteration may run and counts it. Once it has
// returned false it keeps returning false.
func (t *Tracker) Next() bool {
	if t.reason != "" {
		return false
	}
	switch {
	case t.limit > 0 && t.iterations >= t.limit:
		t.reason = StopIterations
	case t.ctx.Err() != nil:
		t.reason = StopCancelled
	case !t.deadline.IsZero() && !t.now().Before(t.deadline):
		t.reason = StopTimeout
	default:
		t.iterations++
		return true
	}
	return false
}

// Improved records that the incumbent got better.
func (t *Tracker) Improved() { t.improvements++ }

// Iterations returns the number of iterations counted so far.
func (t *Tracker) Iterations() int { return t.iterations }

// Stopped reports whether the budget ran out.
func (t *Tracker) Stopped() bool { return t.reason != "" }

// Finish returns the run statistics. Runs that ended without hitting a limit
// report StopExhausted.
func (t *Tracker) Finish() Stats {
	reason := t.reason
	if reason == "" {
		reason = StopExhausted
	}
	return Stats{
		Iterations:   t.iterations,
		Improvements: t.improvements,
		Stop:         reason,
		Duration:     t.now().Sub(t.start),
	}
}
