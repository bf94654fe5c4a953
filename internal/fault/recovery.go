package fault

import (
	"context"
	"time"
)

// Recovery performs the work associated with one Action.
type Recovery interface {
	Action() Action
	Apply(ctx context.Context) error
}

// DelayRecovery models recovery work as a bounded blocking delay.
// Apply returns ctx.Err() if the context ends before the delay elapses.
type DelayRecovery struct {
	action Action
	cost   time.Duration
}

// NewDelayRecovery creates a recovery for action that takes cost to run.
func NewDelayRecovery(action Action, cost time.Duration) *DelayRecovery {
	return &DelayRecovery{action: action, cost: cost}
}

func (r *DelayRecovery) Action() Action { return r.action }

// Cost returns the time Apply blocks for.
func (r *DelayRecovery) Cost() time.Duration { return r.cost }

func (r *DelayRecovery) Apply(ctx context.Context) error {
	timer := time.NewTimer(r.cost)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Strategies maps each Action to the Recovery that implements it.
type Strategies struct {
	Rollback     Recovery
	TimingAdjust Recovery
	Redundant    Recovery
}

// DefaultStrategies returns delay-based recoveries with the given costs.
func DefaultStrategies(rollback, timing, redundant time.Duration) Strategies {
	return Strategies{
		Rollback:     NewDelayRecovery(ActionRollback, rollback),
		TimingAdjust: NewDelayRecovery(ActionTimingAdjust, timing),
		Redundant:    NewDelayRecovery(ActionRedundant, redundant),
	}
}

// For returns the recovery selected for c.
func (s Strategies) For(c Code) Recovery {
	switch SelectAction(c) {
	case ActionRollback:
		return s.Rollback
	case ActionTimingAdjust:
		return s.TimingAdjust
	default:
		return s.Redundant
	}
}
