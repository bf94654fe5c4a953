package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML layout. Durations are strings such as "500ms";
// pointer fields distinguish "unset" from an explicit zero.
type File struct {
	Primary struct {
		Interval         string   `yaml:"interval"`
		FaultProbability *float64 `yaml:"fault_probability"`
		DecayStep        *float64 `yaml:"decay_step"`
		HealthFloor      *float64 `yaml:"health_floor"`
		RiskyProbability *float64 `yaml:"risky_probability"`
		RiskyModulus     *int     `yaml:"risky_modulus"`
	} `yaml:"primary"`

	Detector struct {
		Interval              string   `yaml:"interval"`
		CorruptionProbability *float64 `yaml:"corruption_probability"`
		ValidationProbability *float64 `yaml:"validation_probability"`
		TimingProbability     *float64 `yaml:"timing_probability"`
	} `yaml:"detector"`

	Corrector struct {
		Interval        string   `yaml:"interval"`
		CorrectionBonus *float64 `yaml:"correction_bonus"`
		RollbackCost    string   `yaml:"rollback_cost"`
		TimingCost      string   `yaml:"timing_cost"`
		RedundantCost   string   `yaml:"redundant_cost"`
	} `yaml:"corrector"`

	Reporter struct {
		PollInterval        string   `yaml:"poll_interval"`
		ReportInterval      string   `yaml:"report_interval"`
		LowHealthThreshold  *float64 `yaml:"low_health_threshold"`
		CorrectionThreshold *int64   `yaml:"correction_threshold"`
		HighHealthThreshold *float64 `yaml:"high_health_threshold"`
	} `yaml:"reporter"`

	RunDuration string  `yaml:"run_duration"`
	PinCPUs     *bool   `yaml:"pin_cpus"`
	Seed        *uint64 `yaml:"seed"`
	LogLevel    string  `yaml:"log_level"`
	LogBuffer   *int    `yaml:"log_buffer"`
	ListenAddr  string  `yaml:"listen_addr"`
}

// Load reads a YAML config file and overlays it on Default. A missing file
// yields the defaults. The result is validated.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML data and overlays it on Default.
func Parse(data []byte) (Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	cfg, err := f.ToConfig()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ToConfig converts a File to a Config, starting from Default.
func (f *File) ToConfig() (Config, error) {
	cfg := Default()

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"primary.interval", f.Primary.Interval, &cfg.Primary.Interval},
		{"detector.interval", f.Detector.Interval, &cfg.Detector.Interval},
		{"corrector.interval", f.Corrector.Interval, &cfg.Corrector.Interval},
		{"corrector.rollback_cost", f.Corrector.RollbackCost, &cfg.Corrector.RollbackCost},
		{"corrector.timing_cost", f.Corrector.TimingCost, &cfg.Corrector.TimingCost},
		{"corrector.redundant_cost", f.Corrector.RedundantCost, &cfg.Corrector.RedundantCost},
		{"reporter.poll_interval", f.Reporter.PollInterval, &cfg.Reporter.PollInterval},
		{"reporter.report_interval", f.Reporter.ReportInterval, &cfg.Reporter.ReportInterval},
		{"run_duration", f.RunDuration, &cfg.RunDuration},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, d.name, err)
		}
		*d.dst = parsed
	}

	setFloat(&cfg.Primary.FaultProbability, f.Primary.FaultProbability)
	setFloat(&cfg.Primary.DecayStep, f.Primary.DecayStep)
	setFloat(&cfg.Primary.HealthFloor, f.Primary.HealthFloor)
	setFloat(&cfg.Primary.RiskyProbability, f.Primary.RiskyProbability)
	if f.Primary.RiskyModulus != nil {
		cfg.Primary.RiskyModulus = *f.Primary.RiskyModulus
	}

	setFloat(&cfg.Detector.CorruptionProbability, f.Detector.CorruptionProbability)
	setFloat(&cfg.Detector.ValidationProbability, f.Detector.ValidationProbability)
	setFloat(&cfg.Detector.TimingProbability, f.Detector.TimingProbability)

	setFloat(&cfg.Corrector.CorrectionBonus, f.Corrector.CorrectionBonus)

	setFloat(&cfg.Reporter.LowHealthThreshold, f.Reporter.LowHealthThreshold)
	setFloat(&cfg.Reporter.HighHealthThreshold, f.Reporter.HighHealthThreshold)
	if f.Reporter.CorrectionThreshold != nil {
		cfg.Reporter.CorrectionThreshold = *f.Reporter.CorrectionThreshold
	}

	if f.PinCPUs != nil {
		cfg.PinCPUs = *f.PinCPUs
	}
	if f.Seed != nil {
		cfg.Seed = *f.Seed
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.LogBuffer != nil {
		cfg.LogBuffer = *f.LogBuffer
	}
	if f.ListenAddr != "" {
		cfg.ListenAddr = f.ListenAddr
	}

	return cfg, nil
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
