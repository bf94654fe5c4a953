package advisor

import (
	"strings"
	"sync/atomic"
	"time"

	"selfheal/internal/logs"
	"selfheal/internal/state"
)

// Advisor converts a state snapshot + logs into a health report.
// It only reads; nothing it does feeds back into the shared state.
type Advisor struct {
	logger *logs.Logger
	rules  []Rule
	runID  string

	// primaryDown reports whether the primary worker has ended. When nil,
	// the log is scanned instead and a sighting is latched, since the
	// termination entry eventually leaves the ring buffer.
	primaryDown func() bool
	terminated  atomic.Bool
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithPrimaryStatus makes fn the source of truth for primary termination.
func WithPrimaryStatus(fn func() bool) Option {
	return func(a *Advisor) {
		a.primaryDown = fn
	}
}

// New creates an advisor with the default rules for th.
func New(th Thresholds, logger *logs.Logger, runID string, opts ...Option) *Advisor {
	a := &Advisor{
		logger: logger,
		rules:  DefaultRules(th),
		runID:  runID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Evaluate applies every rule to snapshot and returns a report stamped at.
func (a *Advisor) Evaluate(snapshot state.Snapshot, at time.Time) HealthReport {
	var (
		findings = []Finding{}
		status   = StatusOK
	)

	/* ---------- STATE-BASED RULES ---------- */

	for _, rule := range a.rules {
		result := rule(snapshot)
		if !result.Triggered {
			continue
		}

		findings = append(findings, Finding{
			Signal:         result.Signal,
			Recommendation: result.Recommendation,
			Severity:       result.Severity,
		})
		status = escalate(status, result.Severity)
	}

	/* ---------- WORKER LIFECYCLE ---------- */

	if a.primaryTerminated() {
		findings = append(findings, Finding{
			Signal:         "Primary worker terminated after an intrinsic fault",
			Recommendation: AdviseRestart,
			Severity:       StatusDegraded,
		})
		status = escalate(status, StatusDegraded)
	}

	/* ---------- SUMMARY ---------- */

	summary := "System is healthy"
	if status != StatusOK {
		summary = "System health issues detected"
	}

	return HealthReport{
		RunID:         a.runID,
		GeneratedAt:   at,
		Health:        snapshot.Health,
		Corrections:   snapshot.Corrections,
		FaultRaised:   snapshot.FaultRaised,
		FaultCode:     snapshot.FaultCode,
		OverallStatus: status,
		Summary:       summary,
		Findings:      findings,
	}
}

// primaryTerminated is sticky: the primary never restarts within a run.
func (a *Advisor) primaryTerminated() bool {
	if a.primaryDown != nil {
		return a.primaryDown()
	}
	if a.terminated.Load() {
		return true
	}
	if a.logger == nil {
		return false
	}
	for _, entry := range a.logger.GetLast(100) {
		if entry.Level == logs.ERROR &&
			strings.Contains(entry.Message, "worker terminated") {
			a.terminated.Store(true)
			return true
		}
	}
	return false
}

func escalate(current, severity HealthStatus) HealthStatus {
	if severity == StatusCritical {
		return StatusCritical
	}
	if severity == StatusDegraded && current == StatusOK {
		return StatusDegraded
	}
	return current
}
