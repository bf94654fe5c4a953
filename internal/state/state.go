package state

import (
	"sync/atomic"

	"selfheal/internal/fault"
)

// Counter is the correction counter. It only ever grows by one.
type Counter struct {
	n atomic.Int64
}

// Inc adds one and returns the new count.
func (c *Counter) Inc() int64 {
	return c.n.Add(1)
}

func (c *Counter) Load() int64 {
	return c.n.Load()
}

// Shared bundles the handles every worker is constructed with.
type Shared struct {
	Health      *Health
	Signal      *Signal
	Corrections *Counter
}

// New creates shared state with health at InitialHealth, the signal
// lowered and the counter at zero.
func New() *Shared {
	return &Shared{
		Health:      NewHealth(InitialHealth),
		Signal:      &Signal{},
		Corrections: &Counter{},
	}
}

// Snapshot is a point-in-time view of the shared state. Fields are read
// one at a time; the view is not consistent across fields.
type Snapshot struct {
	Health      float64    `json:"health"`
	FaultRaised bool       `json:"fault_raised"`
	FaultCode   fault.Code `json:"fault_code"`
	Corrections int64      `json:"corrections"`
}

func (s *Shared) Snapshot() Snapshot {
	return Snapshot{
		Health:      s.Health.Load(),
		FaultRaised: s.Signal.Raised(),
		FaultCode:   s.Signal.Code(),
		Corrections: s.Corrections.Load(),
	}
}
