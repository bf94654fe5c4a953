package supervisor

import "errors"

// ErrAffinityUnsupported is returned by the default pinner on platforms
// without a thread affinity syscall.
var ErrAffinityUnsupported = errors.New("cpu affinity not supported on this platform")

// Pinner binds the calling goroutine to a CPU. Pin is called from inside the
// worker goroutine, before the worker starts.
type Pinner interface {
	Pin(cpu int) error
}

// DefaultPinner returns the platform pinner.
func DefaultPinner() Pinner {
	return threadPinner{}
}
