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

var recoveryMetric = map[fault.Action]metrics.MetricKey{
	fault.ActionRollback:     metrics.RecoveryRollbackTotal,
	fault.ActionTimingAdjust: metrics.RecoveryTimingTotal,
	fault.ActionRedundant:    metrics.RecoveryRedundantTotal,
}

// Corrector is the only worker that clears the fault signal. For each
// raised fault it runs the recovery selected by the code band, and only
// after that completes does it count the correction, clear the signal and
// credit health.
type Corrector struct {
	shared     *state.Shared
	interval   time.Duration
	bonus      float64
	strategies fault.Strategies
	log        *logs.Scope
	metrics    *metrics.Registry
}

// NewCorrector creates the error corrector.
func NewCorrector(
	shared *state.Shared,
	policy config.CorrectorPolicy,
	strategies fault.Strategies,
	logger *logs.Logger,
	reg *metrics.Registry,
) *Corrector {
	return &Corrector{
		shared:     shared,
		interval:   policy.Interval,
		bonus:      policy.CorrectionBonus,
		strategies: strategies,
		log:        logger.For(NameCorrector),
		metrics:    reg,
	}
}

// StrategiesFor builds delay-based recoveries from the policy costs.
func StrategiesFor(policy config.CorrectorPolicy) fault.Strategies {
	return fault.DefaultStrategies(policy.RollbackCost, policy.TimingCost, policy.RedundantCost)
}

func (c *Corrector) Name() string { return NameCorrector }

// Start runs the polling loop until the context is cancelled.
func (c *Corrector) Start(ctx context.Context) error {
	c.log.Infof("error corrector standing by")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runOnce(ctx)
		case <-ctx.Done():
			c.log.Debugf("error corrector stopped")
			return nil
		}
	}
}

// runOnce handles the raised fault, if any, and reports whether a full
// correction cycle completed. A recovery interrupted by ctx leaves the
// signal raised and the counter untouched.
func (c *Corrector) runOnce(ctx context.Context) bool {
	if !c.shared.Signal.Raised() {
		return false
	}

	code := c.shared.Signal.Code()
	recovery := c.strategies.For(code)
	c.log.Warnf("correcting error %d (%s) with %s", code, code.Band(), recovery.Action())

	if err := recovery.Apply(ctx); err != nil {
		c.metrics.Inc(metrics.RecoveryAbortedTotal)
		c.log.Warnf("recovery of error %d aborted: %v", code, err)
		return false
	}

	count := c.shared.Corrections.Inc()
	c.shared.Signal.Clear()
	health := c.shared.Health.Add(c.bonus)

	c.metrics.Inc(metrics.CorrectionsTotal)
	c.metrics.Inc(recoveryMetric[recovery.Action()])
	c.log.Infof("error %d corrected (corrections=%d, health=%.1f)", code, count, health)
	return true
}
