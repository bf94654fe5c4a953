package advisor

import (
	"fmt"

	"selfheal/internal/state"
)

// HealthStatus represents overall system health.
type HealthStatus string

const (
	StatusOK       HealthStatus = "OK"
	StatusDegraded HealthStatus = "DEGRADED"
	StatusCritical HealthStatus = "CRITICAL"
)

// Recommendation texts.
const (
	AdviseTightenDetection = "Increase watchdog timer frequency"
	AdviseInvestigate      = "Investigate persistent error source"
	AdviseReduceRedundancy = "Reduce redundancy for efficiency"
	AdviseRestart          = "Restart the process to resume the nominal workload"
)

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       HealthStatus
}

// Rule evaluates a state snapshot.
type Rule func(snapshot state.Snapshot) RuleResult

// Thresholds parameterize the default rules.
type Thresholds struct {
	LowHealth   float64
	Corrections int64
	HighHealth  float64
}

// DefaultRules returns the low-health, persistent-fault and surplus-health
// rules, in that order.
func DefaultRules(th Thresholds) []Rule {
	return []Rule{
		LowHealthRule(th.LowHealth),
		PersistentFaultRule(th.Corrections),
		SurplusHealthRule(th.HighHealth),
	}
}

// ---------- RULES ----------

// Health below threshold means faults outpace detection.
func LowHealthRule(threshold float64) Rule {
	return func(snapshot state.Snapshot) RuleResult {
		if snapshot.Health < threshold {
			return RuleResult{
				Triggered:      true,
				Signal:         fmt.Sprintf("Health %.1f is below %.0f", snapshot.Health, threshold),
				Recommendation: AdviseTightenDetection,
				Severity:       StatusCritical,
			}
		}
		return RuleResult{}
	}
}

// Many corrections point at a recurring fault source.
func PersistentFaultRule(threshold int64) Rule {
	return func(snapshot state.Snapshot) RuleResult {
		if snapshot.Corrections > threshold {
			return RuleResult{
				Triggered:      true,
				Signal:         fmt.Sprintf("%d corrections applied", snapshot.Corrections),
				Recommendation: AdviseInvestigate,
				Severity:       StatusDegraded,
			}
		}
		return RuleResult{}
	}
}

// Health well above target leaves room to cut recovery cost.
func SurplusHealthRule(threshold float64) Rule {
	return func(snapshot state.Snapshot) RuleResult {
		if snapshot.Health > threshold {
			return RuleResult{
				Triggered:      true,
				Signal:         fmt.Sprintf("Health %.1f is above %.0f", snapshot.Health, threshold),
				Recommendation: AdviseReduceRedundancy,
				Severity:       StatusOK,
			}
		}
		return RuleResult{}
	}
}
