package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey is a strongly typed metric identifier.
type MetricKey string

// Metric keys (centralized)
const (
	// Primary worker
	PrimaryIterationsTotal      MetricKey = "primary_iterations_total"
	PrimaryComputeFaultsTotal   MetricKey = "primary_compute_faults_total"
	PrimaryIntrinsicFaultsTotal MetricKey = "primary_intrinsic_faults_total"

	// Fault detector
	DetectorTicksTotal             MetricKey = "detector_ticks_total"
	DetectorMemoryCorruptionTotal  MetricKey = "detector_memory_corruption_total"
	DetectorValidationFailureTotal MetricKey = "detector_validation_failure_total"
	DetectorTimingViolationTotal   MetricKey = "detector_timing_violation_total"

	// Fault signal
	FaultsRaisedTotal   MetricKey = "faults_raised_total"
	FaultsInjectedTotal MetricKey = "faults_injected_total"

	// Error corrector
	CorrectionsTotal       MetricKey = "corrections_total"
	RecoveryRollbackTotal  MetricKey = "recovery_rollback_total"
	RecoveryTimingTotal    MetricKey = "recovery_timing_total"
	RecoveryRedundantTotal MetricKey = "recovery_redundant_total"
	RecoveryAbortedTotal   MetricKey = "recovery_aborted_total"

	// Health reporter
	ReportsTotal MetricKey = "reports_total"

	// Supervisor
	AffinityFailuresTotal MetricKey = "affinity_failures_total"
)

// Registry stores all metrics.
type Registry struct {
	mu       sync.RWMutex
	counters map[MetricKey]*int64
}

// NewRegistry creates a metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[MetricKey]*int64),
	}
}

// Inc increments a metric by 1.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Add increments a metric by delta.
func (r *Registry) Add(key MetricKey, delta int64) {
	atomic.AddInt64(r.counter(key), delta)
}

// Get returns the current value of a metric, 0 if it was never touched.
func (r *Registry) Get(key MetricKey) int64 {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if !ok {
		return 0
	}
	return atomic.LoadInt64(ptr)
}

func (r *Registry) counter(key MetricKey) *int64 {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if ok {
		return ptr
	}

	// Slow path: metric not yet initialized
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok = r.counters[key]; ok {
		return ptr
	}

	ptr = new(int64)
	r.counters[key] = ptr
	return ptr
}

// Snapshot copies every counter that has been touched at least once.
func (r *Registry) Snapshot() map[MetricKey]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[MetricKey]int64, len(r.counters))
	for key, ptr := range r.counters {
		out[key] = atomic.LoadInt64(ptr)
	}
	return out
}
