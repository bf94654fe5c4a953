package state

import (
	"sync/atomic"

	"selfheal/internal/fault"
)

// Signal is the fault channel shared by producers (primary worker, fault
// detector) and the single consumer (error corrector).
//
// The code is only meaningful while the signal is raised. Concurrent raises
// are last-write-wins: a fault whose code is overwritten before the
// corrector reads it is lost.
type Signal struct {
	raised atomic.Bool
	code   atomic.Int64
}

// Raise publishes code and then sets the flag.
func (s *Signal) Raise(code fault.Code) {
	s.code.Store(int64(code))
	s.raised.Store(true)
}

// Clear lowers the flag. Only the corrector calls this.
func (s *Signal) Clear() {
	s.raised.Store(false)
}

func (s *Signal) Raised() bool {
	return s.raised.Load()
}

// Code returns the last raised code; stale when Raised is false.
func (s *Signal) Code() fault.Code {
	return fault.Code(s.code.Load())
}
