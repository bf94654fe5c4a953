package worker

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// Worker names, also used as log components and CPU assignment order.
const (
	NamePrimary   = "primary"
	NameDetector  = "detector"
	NameCorrector = "corrector"
	NameReporter  = "reporter"
)

// ErrZeroDivisor is returned by Compute when the risky division hits a zero
// divisor. Callers treat it as a transient fault and use a fallback value.
var ErrZeroDivisor = errors.New("zero divisor")

// Compute is the nominal unit of work for one iteration: a smooth function
// of the iteration index. When risky is set it instead divides by
// iteration % modulus, which is zero on every multiple of modulus.
func Compute(iteration, modulus int, risky bool) (float64, error) {
	if risky {
		divisor := iteration % modulus
		if divisor == 0 {
			return 0, fmt.Errorf("iteration %d: %w", iteration, ErrZeroDivisor)
		}
		return 1 / float64(divisor), nil
	}

	x := float64(iteration)
	return math.Sqrt(x) * math.Sin(x), nil
}

// Rand is the random source a worker draws its fault events from.
// Implementations need not be safe for concurrent use; each worker owns one.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a PCG source. Workers sharing a seed get distinct streams.
func NewRand(seed, stream uint64) Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
