package worker

import (
	"context"
	"sync/atomic"

	"selfheal/internal/fault"
	"selfheal/internal/logs"
	"selfheal/internal/metrics"
	"selfheal/internal/state"
)

/* ---------------- Test doubles ---------------- */

// scriptedRand replays floats and ints in order, then returns fallback / 0.
type scriptedRand struct {
	floats   []float64
	ints     []int
	fallback float64
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return r.fallback
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

// neverRand never triggers any probabilistic event.
func neverRand() *scriptedRand { return &scriptedRand{fallback: 0.999} }

type spyRecovery struct {
	action  fault.Action
	calls   atomic.Int32
	onApply func()
	err     error
}

func (s *spyRecovery) Action() fault.Action { return s.action }

func (s *spyRecovery) Apply(ctx context.Context) error {
	s.calls.Add(1)
	if s.onApply != nil {
		s.onApply()
	}
	return s.err
}

type spies struct {
	rollback, timing, redundant *spyRecovery
}

func newSpies() spies {
	return spies{
		rollback:  &spyRecovery{action: fault.ActionRollback},
		timing:    &spyRecovery{action: fault.ActionTimingAdjust},
		redundant: &spyRecovery{action: fault.ActionRedundant},
	}
}

func (s spies) strategies() fault.Strategies {
	return fault.Strategies{Rollback: s.rollback, TimingAdjust: s.timing, Redundant: s.redundant}
}

func newTestDeps() (*state.Shared, *logs.Logger, *metrics.Registry) {
	return state.New(), logs.NewLogger(100, logs.DEBUG), metrics.NewRegistry()
}
