package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfheal/internal/config"
	"selfheal/internal/fault"
	"selfheal/internal/logs"
	"selfheal/internal/metrics"
)

func testPrimaryPolicy() config.PrimaryPolicy {
	p := config.Default().Primary
	p.Interval = time.Millisecond
	return p
}

func TestCompute_NeverPanicsForAnyIteration(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		for _, risky := range []bool{false, true} {
			assert.NotPanics(t, func() {
				_, err := Compute(i, 10, risky)
				if risky && i%10 == 0 {
					assert.ErrorIs(t, err, ErrZeroDivisor)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	}
}

func TestCompute_Values(t *testing.T) {
	v, err := Compute(4, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)

	v, err = Compute(0, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestPrimary_Step_ZeroDivisorIsRecoveredLocally(t *testing.T) {
	shared, logger, reg := newTestDeps()
	// risky draw, then no intrinsic fault
	rng := &scriptedRand{floats: []float64{0.0, 0.9}}
	p := NewPrimary(shared, testPrimaryPolicy(), rng, logger, reg)

	outcome := p.step()

	assert.Equal(t, OutcomeContinue, outcome.Kind)
	assert.Equal(t, 0.0, outcome.Value)
	assert.Equal(t, int64(1), reg.Get(metrics.PrimaryComputeFaultsTotal))
	assert.False(t, shared.Signal.Raised())
}

func TestPrimary_Step_IntrinsicFaultCodeInBand(t *testing.T) {
	shared, logger, reg := newTestDeps()
	rng := &scriptedRand{floats: []float64{0.9, 0.1}, ints: []int{42}}
	p := NewPrimary(shared, testPrimaryPolicy(), rng, logger, reg)

	outcome := p.step()

	assert.Equal(t, OutcomeFault, outcome.Kind)
	assert.Equal(t, fault.Code(142), outcome.Code)
	assert.Equal(t, fault.BandIntrinsic, outcome.Code.Band())
}

func TestPrimary_Step_CodeRangeBounds(t *testing.T) {
	shared, logger, reg := newTestDeps()

	for _, n := range []int{0, 98} {
		rng := &scriptedRand{floats: []float64{0.9, 0.0}, ints: []int{n}}
		p := NewPrimary(shared, testPrimaryPolicy(), rng, logger, reg)

		code := p.step().Code
		assert.GreaterOrEqual(t, code, fault.IntrinsicMin)
		assert.Less(t, code, fault.IntrinsicMax)
	}
}

func TestPrimary_Start_TerminatesOnIntrinsicFault(t *testing.T) {
	shared, logger, reg := newTestDeps()
	rng := &scriptedRand{floats: []float64{0.9, 0.0}, ints: []int{49}}
	p := NewPrimary(shared, testPrimaryPolicy(), rng, logger, reg)

	err := p.Start(context.Background())

	require.NoError(t, err, "an intrinsic fault must not surface as an error")
	assert.True(t, shared.Signal.Raised())
	assert.Equal(t, fault.Code(149), shared.Signal.Code())
	assert.Equal(t, int64(1), reg.Get(metrics.PrimaryIntrinsicFaultsTotal))

	found := false
	for _, e := range logger.GetLast(10) {
		if e.Level == logs.ERROR && strings.Contains(e.Message, "worker terminated") {
			found = true
		}
	}
	assert.True(t, found, "expected an ERROR entry announcing termination")
}

func TestPrimary_Start_DecaysAndStopsOnCancel(t *testing.T) {
	shared, logger, reg := newTestDeps()
	p := NewPrimary(shared, testPrimaryPolicy(), neverRand(), logger, reg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	assert.Eventually(t, func() bool {
		return reg.Get(metrics.PrimaryIterationsTotal) >= 3
	}, time.Second, 2*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("primary worker did not stop after cancel")
	}

	assert.Less(t, shared.Health.Load(), 100.0)
	assert.False(t, shared.Signal.Raised())
}

func TestPrimary_DecayAloneNeverLeavesFloorToCeiling(t *testing.T) {
	shared, logger, reg := newTestDeps()
	p := NewPrimary(shared, testPrimaryPolicy(), neverRand(), logger, reg)

	for i := 0; i < 5000; i++ {
		p.advance()
		h := shared.Health.Load()
		require.LessOrEqual(t, h, 100.0)
		require.GreaterOrEqual(t, h, 60.0)
	}

	assert.Equal(t, 60.0, shared.Health.Load())
	assert.Equal(t, 5000, p.iteration)
}
