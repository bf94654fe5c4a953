package state

import (
	"math"
	"sync/atomic"
)

const (
	MinHealth     = 0.0
	MaxHealth     = 100.0
	InitialHealth = 100.0
)

// Health is the health register: a float64 in [MinHealth, MaxHealth]
// stored as its bit pattern so every write can be a single CAS.
type Health struct {
	bits atomic.Uint64
}

// NewHealth creates a register holding initial, clamped to the valid range.
func NewHealth(initial float64) *Health {
	h := &Health{}
	h.bits.Store(math.Float64bits(clamp(initial)))
	return h
}

// Load returns the current value.
func (h *Health) Load() float64 {
	return math.Float64frombits(h.bits.Load())
}

// Store replaces the value, clamped.
func (h *Health) Store(v float64) {
	h.bits.Store(math.Float64bits(clamp(v)))
}

// Add adds delta and returns the new, clamped value.
func (h *Health) Add(delta float64) float64 {
	return h.update(func(cur float64) float64 {
		return cur + delta
	})
}

// Decay lowers the value by step without going below floor. A value already
// at or below floor is left as is.
func (h *Health) Decay(step, floor float64) float64 {
	return h.update(func(cur float64) float64 {
		if cur <= floor {
			return cur
		}
		return math.Max(floor, cur-step)
	})
}

func (h *Health) update(fn func(float64) float64) float64 {
	for {
		old := h.bits.Load()
		next := clamp(fn(math.Float64frombits(old)))
		if h.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinHealth
	}
	return math.Min(MaxHealth, math.Max(MinHealth, v))
}
