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

type anomalyCheck struct {
	name        string
	probability float64
	code        fault.Code
	metric      metrics.MetricKey
}

// Detector polls for anomalies and raises the fault signal when it finds
// one. It never touches health and never stops on its own.
type Detector struct {
	signal   *state.Signal
	interval time.Duration
	checks   []anomalyCheck
	rng      Rand
	log      *logs.Scope
	metrics  *metrics.Registry
}

// NewDetector creates the fault detector.
func NewDetector(
	shared *state.Shared,
	policy config.DetectorPolicy,
	rng Rand,
	logger *logs.Logger,
	reg *metrics.Registry,
) *Detector {
	return &Detector{
		signal:   shared.Signal,
		interval: policy.Interval,
		// Later checks overwrite earlier ones raised in the same tick.
		checks: []anomalyCheck{
			{"memory corruption", policy.CorruptionProbability, fault.CodeMemoryCorruption, metrics.DetectorMemoryCorruptionTotal},
			{"validation failure", policy.ValidationProbability, fault.CodeValidationFailure, metrics.DetectorValidationFailureTotal},
			{"timing violation", policy.TimingProbability, fault.CodeTimingViolation, metrics.DetectorTimingViolationTotal},
		},
		rng:     rng,
		log:     logger.For(NameDetector),
		metrics: reg,
	}
}

func (d *Detector) Name() string { return NameDetector }

// Start runs the polling loop until the context is cancelled.
func (d *Detector) Start(ctx context.Context) error {
	d.log.Infof("fault detector activated")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.runOnce()
		case <-ctx.Done():
			d.log.Debugf("fault detector stopped")
			return nil
		}
	}
}

// runOnce performs a single surveillance tick and returns the codes it raised.
func (d *Detector) runOnce() []fault.Code {
	d.metrics.Inc(metrics.DetectorTicksTotal)

	var raised []fault.Code
	for _, c := range d.checks {
		if d.rng.Float64() >= c.probability {
			continue
		}
		d.signal.Raise(c.code)
		d.metrics.Inc(c.metric)
		d.metrics.Inc(metrics.FaultsRaisedTotal)
		d.log.Warnf("%s detected, raised code %d", c.name, c.code)
		raised = append(raised, c.code)
	}
	return raised
}
