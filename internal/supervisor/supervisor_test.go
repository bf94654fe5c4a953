package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfheal/internal/logs"
	"selfheal/internal/metrics"
	"selfheal/internal/state"
)

/* ---------------- Test doubles ---------------- */

type fakePinner struct {
	mu   sync.Mutex
	cpus []int
	fail map[int]bool
}

func (p *fakePinner) Pin(cpu int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cpus = append(p.cpus, cpu)
	if p.fail[cpu] {
		return errors.New("no such cpu")
	}
	return nil
}

func (p *fakePinner) pinned() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.cpus...)
}

// blockingWorker runs until the context ends.
type blockingWorker struct{ name string }

func (w blockingWorker) Name() string { return w.name }

func (w blockingWorker) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// returningWorker returns err immediately.
type returningWorker struct {
	name string
	err  error
}

func (w returningWorker) Name() string { return w.name }

func (w returningWorker) Start(context.Context) error { return w.err }

func newTestSupervisor(d time.Duration, opts ...Option) (*Supervisor, *metrics.Registry) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(100, logs.DEBUG)
	return New(state.New(), d, logger, reg, opts...), reg
}

/* ---------------- Tests ---------------- */

func TestSupervisor_RunIDIsUUID(t *testing.T) {
	s, _ := newTestSupervisor(time.Second)

	_, err := uuid.Parse(s.RunID())
	assert.NoError(t, err)
}

func TestSupervisor_RunWithoutWorkers(t *testing.T) {
	s, _ := newTestSupervisor(time.Second)

	assert.ErrorIs(t, s.Run(context.Background()), ErrNoWorkers)
}

func TestSupervisor_StopsAfterDuration(t *testing.T) {
	pinner := &fakePinner{}
	s, _ := newTestSupervisor(50*time.Millisecond, WithPinner(pinner))
	s.Add(blockingWorker{"primary"})
	s.Add(blockingWorker{"detector"})

	start := time.Now()
	err := s.Run(context.Background())

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	for _, w := range s.Registry().Snapshot() {
		assert.Equal(t, Stopped, w.State, w.Name)
		assert.True(t, w.Pinned, w.Name)
	}
	assert.ElementsMatch(t, []int{0, 1}, pinner.pinned())
}

func TestSupervisor_EarlyReturnIsTerminated(t *testing.T) {
	s, _ := newTestSupervisor(50*time.Millisecond, WithPinner(&fakePinner{}))
	s.Add(returningWorker{name: "primary"})
	s.Add(blockingWorker{"detector"})

	require.NoError(t, s.Run(context.Background()))

	primary, _ := s.Registry().State("primary")
	detector, _ := s.Registry().State("detector")
	assert.Equal(t, Terminated, primary)
	assert.Equal(t, Stopped, detector, "one worker ending must not stop the others")
}

func TestSupervisor_WorkerErrorDoesNotStopSiblings(t *testing.T) {
	boom := errors.New("boom")
	s, _ := newTestSupervisor(80*time.Millisecond, WithPinner(&fakePinner{}))
	s.Add(returningWorker{name: "primary", err: boom})
	s.Add(blockingWorker{"detector"})

	start := time.Now()
	err := s.Run(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond,
		"the detector must keep running until the run duration elapses")

	snap := s.Registry().Snapshot()
	assert.Equal(t, Terminated, snap[0].State)
	assert.Equal(t, "boom", snap[0].Reason)
	assert.Equal(t, Stopped, snap[1].State)
}

func TestSupervisor_PinFailureIsNotFatal(t *testing.T) {
	pinner := &fakePinner{fail: map[int]bool{1: true}}
	s, reg := newTestSupervisor(20*time.Millisecond, WithPinner(pinner))
	s.Add(blockingWorker{"primary"})
	s.Add(blockingWorker{"detector"})

	require.NoError(t, s.Run(context.Background()))

	snap := s.Registry().Snapshot()
	assert.True(t, snap[0].Pinned)
	assert.False(t, snap[1].Pinned)
	assert.Equal(t, Stopped, snap[1].State)
	assert.Equal(t, int64(1), reg.Get(metrics.AffinityFailuresTotal))
}

func TestSupervisor_WithoutPinning(t *testing.T) {
	pinner := &fakePinner{}
	s, _ := newTestSupervisor(10*time.Millisecond, WithPinner(pinner), WithoutPinning())
	s.Add(blockingWorker{"primary"})

	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, pinner.pinned())
}

func TestSupervisor_ParentCancelEndsRunEarly(t *testing.T) {
	s, _ := newTestSupervisor(time.Minute, WithoutPinning())
	s.Add(blockingWorker{"primary"})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not end after parent cancel")
	}
}
