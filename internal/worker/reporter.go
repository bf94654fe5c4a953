package worker

import (
	"bytes"
	"context"
	"io"
	"time"

	"selfheal/internal/advisor"
	"selfheal/internal/config"
	"selfheal/internal/logs"
	"selfheal/internal/metrics"
	"selfheal/internal/state"
)

// Reporter renders a health report at most once per report interval. It
// polls faster than that only to check the elapsed time cheaply.
type Reporter struct {
	shared     *state.Shared
	advisor    *advisor.Advisor
	poll       time.Duration
	interval   time.Duration
	out        io.Writer
	now        func() time.Time
	lastReport time.Time
	log        *logs.Scope
	metrics    *metrics.Registry
}

// NewReporter creates the health reporter. Reports are rendered to out.
func NewReporter(
	shared *state.Shared,
	adv *advisor.Advisor,
	policy config.ReporterPolicy,
	out io.Writer,
	logger *logs.Logger,
	reg *metrics.Registry,
) *Reporter {
	r := &Reporter{
		shared:   shared,
		advisor:  adv,
		poll:     policy.PollInterval,
		interval: policy.ReportInterval,
		out:      out,
		now:      time.Now,
		log:      logger.For(NameReporter),
		metrics:  reg,
	}
	r.lastReport = r.now()
	return r
}

func (r *Reporter) Name() string { return NameReporter }

// Start runs the polling loop until the context is cancelled.
func (r *Reporter) Start(ctx context.Context) error {
	r.log.Infof("health reporter initialized")
	r.lastReport = r.now()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runOnce()
		case <-ctx.Done():
			r.log.Debugf("health reporter stopped")
			return nil
		}
	}
}

// runOnce emits a report if more than one interval has passed since the
// last one.
func (r *Reporter) runOnce() (advisor.HealthReport, bool) {
	now := r.now()
	if now.Sub(r.lastReport) <= r.interval {
		return advisor.HealthReport{}, false
	}

	report := r.advisor.Evaluate(r.shared.Snapshot(), now)

	// Render in one write so log lines from other workers cannot split it.
	var buf bytes.Buffer
	report.Render(&buf)
	_, _ = r.out.Write(buf.Bytes())

	r.metrics.Inc(metrics.ReportsTotal)
	r.log.Debugf("health report: status=%s health=%.1f corrections=%d",
		report.OverallStatus, report.Health, report.Corrections)
	r.lastReport = now
	return report, true
}
