package worker

import (
	"context"
	"time"

	"selfheal/internal/config"
	"selfheal/internal/fault"
	"selfheal/internal/logs"
	"selfheal/internal/metrics"
	"selfheal/internal/state"
)

// OutcomeKind tags the result of one primary iteration.
type OutcomeKind int

const (
	OutcomeContinue OutcomeKind = iota
	OutcomeFault
)

// Outcome is the result of one primary iteration. Code is set only for
// OutcomeFault.
type Outcome struct {
	Kind      OutcomeKind
	Iteration int
	Value     float64
	Code      fault.Code
}

// Primary runs the nominal workload. It decays health a little per
// iteration and, on an intrinsic fault, raises the fault signal and stops
// for good.
type Primary struct {
	health    *state.Health
	signal    *state.Signal
	policy    config.PrimaryPolicy
	rng       Rand
	log       *logs.Scope
	metrics   *metrics.Registry
	iteration int
}

// NewPrimary creates the primary worker.
func NewPrimary(
	shared *state.Shared,
	policy config.PrimaryPolicy,
	rng Rand,
	logger *logs.Logger,
	reg *metrics.Registry,
) *Primary {
	return &Primary{
		health:  shared.Health,
		signal:  shared.Signal,
		policy:  policy,
		rng:     rng,
		log:     logger.For(NamePrimary),
		metrics: reg,
	}
}

func (p *Primary) Name() string { return NamePrimary }

// Start runs iterations until an intrinsic fault or until ctx is cancelled.
// Either way it returns nil: a fault ends this worker, not the system.
func (p *Primary) Start(ctx context.Context) error {
	p.log.Infof("primary worker started")

	ticker := time.NewTicker(p.policy.Interval)
	defer ticker.Stop()

	for {
		outcome := p.step()
		if outcome.Kind == OutcomeFault {
			p.raise(outcome)
			return nil
		}

		select {
		case <-ticker.C:
			p.advance()
		case <-ctx.Done():
			p.log.Debugf("primary worker stopped at iteration %d", p.iteration)
			return nil
		}
	}
}

// step performs one unit of work and decides whether this iteration faults.
func (p *Primary) step() Outcome {
	risky := p.rng.Float64() < p.policy.RiskyProbability

	value, err := Compute(p.iteration, p.policy.RiskyModulus, risky)
	if err != nil {
		p.metrics.Inc(metrics.PrimaryComputeFaultsTotal)
		p.log.Debugf("recovered from %v, using fallback value", err)
		value = 0
	}

	if p.rng.Float64() < p.policy.FaultProbability {
		span := int(fault.IntrinsicMax - fault.IntrinsicMin)
		return Outcome{
			Kind:      OutcomeFault,
			Iteration: p.iteration,
			Value:     value,
			Code:      fault.IntrinsicMin + fault.Code(p.rng.IntN(span)),
		}
	}

	return Outcome{Kind: OutcomeContinue, Iteration: p.iteration, Value: value}
}

// advance completes an iteration: bump the counter and decay health.
func (p *Primary) advance() {
	p.iteration++
	p.metrics.Inc(metrics.PrimaryIterationsTotal)
	p.health.Decay(p.policy.DecayStep, p.policy.HealthFloor)
}

func (p *Primary) raise(o Outcome) {
	p.signal.Raise(o.Code)
	p.metrics.Inc(metrics.PrimaryIntrinsicFaultsTotal)
	p.metrics.Inc(metrics.FaultsRaisedTotal)
	p.log.Errorf("intrinsic fault at iteration %d (code %d), worker terminated", o.Iteration, o.Code)
}
