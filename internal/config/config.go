package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// PrimaryPolicy controls the nominal workload.
type PrimaryPolicy struct {
	Interval         time.Duration // pause between iterations
	FaultProbability float64       // per-iteration chance of an intrinsic fault
	DecayStep        float64       // health lost per completed iteration
	HealthFloor      float64       // decay never takes health below this
	RiskyProbability float64       // chance the iteration attempts the risky division
	RiskyModulus     int           // divisor is iteration % RiskyModulus
}

// DetectorPolicy controls anomaly surveillance.
type DetectorPolicy struct {
	Interval              time.Duration
	CorruptionProbability float64
	ValidationProbability float64
	TimingProbability     float64
}

// CorrectorPolicy controls fault recovery.
type CorrectorPolicy struct {
	Interval        time.Duration
	CorrectionBonus float64
	RollbackCost    time.Duration
	TimingCost      time.Duration
	RedundantCost   time.Duration
}

// ReporterPolicy controls periodic health reports and advisory thresholds.
type ReporterPolicy struct {
	PollInterval        time.Duration
	ReportInterval      time.Duration
	LowHealthThreshold  float64 // advise tighter detection below this
	CorrectionThreshold int64   // advise root-cause work above this
	HighHealthThreshold float64 // advise less redundancy above this
}

type Config struct {
	Primary   PrimaryPolicy
	Detector  DetectorPolicy
	Corrector CorrectorPolicy
	Reporter  ReporterPolicy

	RunDuration time.Duration
	PinCPUs     bool
	Seed        uint64 // 0 picks a seed from the clock
	LogLevel    string
	LogBuffer   int
	ListenAddr  string // empty disables the status server
}

func Default() Config {
	return Config{
		Primary: PrimaryPolicy{
			Interval:         500 * time.Millisecond,
			FaultProbability: 0.15,
			DecayStep:        0.01,
			HealthFloor:      60,
			RiskyProbability: 0.05,
			RiskyModulus:     10,
		},
		Detector: DetectorPolicy{
			Interval:              100 * time.Millisecond,
			CorruptionProbability: 0.02,
			ValidationProbability: 0.03,
			TimingProbability:     0.01,
		},
		Corrector: CorrectorPolicy{
			Interval:        100 * time.Millisecond,
			CorrectionBonus: 2.5,
			RollbackCost:    200 * time.Millisecond,
			TimingCost:      100 * time.Millisecond,
			RedundantCost:   300 * time.Millisecond,
		},
		Reporter: ReporterPolicy{
			PollInterval:        500 * time.Millisecond,
			ReportInterval:      5 * time.Second,
			LowHealthThreshold:  75,
			CorrectionThreshold: 10,
			HighHealthThreshold: 95,
		},
		RunDuration: 60 * time.Second,
		PinCPUs:     true,
		LogLevel:    "INFO",
		LogBuffer:   1000,
	}
}

// Validate reports an invalid field, wrapped in ErrInvalid.
func (c Config) Validate() error {
	probabilities := map[string]float64{
		"primary.fault_probability":       c.Primary.FaultProbability,
		"primary.risky_probability":       c.Primary.RiskyProbability,
		"detector.corruption_probability": c.Detector.CorruptionProbability,
		"detector.validation_probability": c.Detector.ValidationProbability,
		"detector.timing_probability":     c.Detector.TimingProbability,
	}
	for name, p := range probabilities {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %v", ErrInvalid, name, p)
		}
	}

	durations := map[string]time.Duration{
		"primary.interval":         c.Primary.Interval,
		"detector.interval":        c.Detector.Interval,
		"corrector.interval":       c.Corrector.Interval,
		"reporter.poll_interval":   c.Reporter.PollInterval,
		"reporter.report_interval": c.Reporter.ReportInterval,
		"run_duration":             c.RunDuration,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, name, d)
		}
	}

	costs := map[string]time.Duration{
		"corrector.rollback_cost":  c.Corrector.RollbackCost,
		"corrector.timing_cost":    c.Corrector.TimingCost,
		"corrector.redundant_cost": c.Corrector.RedundantCost,
	}
	for name, d := range costs {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalid, name, d)
		}
	}

	if c.Primary.HealthFloor < 0 || c.Primary.HealthFloor > 100 {
		return fmt.Errorf("%w: primary.health_floor must be in [0,100], got %v", ErrInvalid, c.Primary.HealthFloor)
	}
	if c.Primary.DecayStep < 0 {
		return fmt.Errorf("%w: primary.decay_step must not be negative", ErrInvalid)
	}
	if c.Primary.RiskyModulus <= 0 {
		return fmt.Errorf("%w: primary.risky_modulus must be positive", ErrInvalid)
	}
	if c.Corrector.CorrectionBonus < 0 {
		return fmt.Errorf("%w: corrector.correction_bonus must not be negative", ErrInvalid)
	}
	if c.LogBuffer <= 0 {
		return fmt.Errorf("%w: log_buffer must be positive", ErrInvalid)
	}
	return nil
}
