package supervisor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"selfheal/internal/logs"
	"selfheal/internal/metrics"
	"selfheal/internal/state"
)

// ErrNoWorkers is returned by Run when nothing was added.
var ErrNoWorkers = errors.New("no workers to supervise")

// Worker is a long-running loop. Start blocks until the worker is done or
// ctx is cancelled.
type Worker interface {
	Name() string
	Start(ctx context.Context) error
}

// Supervisor starts its workers together, one per CPU index in the order
// they were added, and stops them all once the run duration elapses.
type Supervisor struct {
	runID    string
	duration time.Duration
	pin      bool
	pinner   Pinner
	shared   *state.Shared
	workers  []Worker
	registry *Registry
	log      *logs.Scope
	metrics  *metrics.Registry
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithPinner replaces the platform pinner.
func WithPinner(p Pinner) Option {
	return func(s *Supervisor) {
		s.pinner = p
	}
}

// WithoutPinning disables CPU affinity entirely.
func WithoutPinning() Option {
	return func(s *Supervisor) {
		s.pin = false
	}
}

// New creates a supervisor for a run of the given duration. shared is only
// read, for the final summary.
func New(
	shared *state.Shared,
	duration time.Duration,
	logger *logs.Logger,
	reg *metrics.Registry,
	opts ...Option,
) *Supervisor {
	s := &Supervisor{
		runID:    uuid.NewString(),
		duration: duration,
		pin:      true,
		pinner:   DefaultPinner(),
		shared:   shared,
		registry: NewRegistry(),
		log:      logger.For("supervisor"),
		metrics:  reg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunID identifies this run in logs, reports and the status API.
func (s *Supervisor) RunID() string { return s.runID }

// Registry exposes worker lifecycle state.
func (s *Supervisor) Registry() *Registry { return s.registry }

// Add schedules w on the next CPU index. Call before Run.
func (s *Supervisor) Add(w Worker) {
	s.registry.Add(w.Name(), len(s.workers))
	s.workers = append(s.workers, w)
}

// Run starts every worker and blocks until the run duration elapses or ctx
// is cancelled, then waits for all workers to return. A worker returning
// early, with or without an error, does not end the run. Run returns the
// first worker error, if any.
func (s *Supervisor) Run(ctx context.Context) error {
	if len(s.workers) == 0 {
		return ErrNoWorkers
	}

	runCtx, cancel := context.WithTimeout(ctx, s.duration)
	defer cancel()

	s.log.Infof("run %s starting %d workers for %s", s.runID, len(s.workers), s.duration)

	// A plain group: one worker failing must not cancel its siblings.
	var g errgroup.Group
	for cpu, w := range s.workers {
		g.Go(func() error {
			return s.runWorker(runCtx, cpu, w)
		})
	}
	err := g.Wait()

	snap := s.shared.Snapshot()
	s.log.Infof("run %s finished: health=%.1f corrections=%d fault_raised=%t",
		s.runID, snap.Health, snap.Corrections, snap.FaultRaised)
	for _, w := range s.registry.Snapshot() {
		s.log.Debugf("worker %s on cpu %d ended %s", w.Name, w.CPU, w.State)
	}
	return err
}

func (s *Supervisor) runWorker(ctx context.Context, cpu int, w Worker) error {
	name := w.Name()

	pinned := false
	if s.pin {
		if err := s.pinner.Pin(cpu); err != nil {
			s.metrics.Inc(metrics.AffinityFailuresTotal)
			s.log.Warnf("worker %s: cpu affinity not applied: %v", name, err)
		} else {
			pinned = true
		}
	}

	s.registry.MarkRunning(name, pinned)
	err := w.Start(ctx)

	if ctx.Err() != nil {
		s.registry.MarkStopped(name)
		return err
	}

	reason := "returned before the run ended"
	if err != nil {
		reason = err.Error()
	}
	s.registry.MarkTerminated(name, reason)
	s.log.Warnf("worker %s is no longer running: %s", name, reason)
	return err
}
