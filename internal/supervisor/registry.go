package supervisor

import (
	"sort"
	"sync"
	"time"
)

// WorkerState is the lifecycle state of a supervised worker.
type WorkerState int

const (
	Pending WorkerState = iota
	Running
	Terminated // returned on its own before the run ended
	Stopped    // returned because the run ended
)

func (s WorkerState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func (s WorkerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// WorkerStatus tracks the lifecycle of a single worker.
type WorkerStatus struct {
	Name      string      `json:"name"`
	CPU       int         `json:"cpu"`
	State     WorkerState `json:"state"`
	Pinned    bool        `json:"pinned"`
	StartedAt time.Time   `json:"started_at,omitzero"`
	StoppedAt time.Time   `json:"stopped_at,omitzero"`
	Reason    string      `json:"reason,omitempty"`
}

// Registry tracks the lifecycle of every supervised worker.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]*WorkerStatus
	now     func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		workers: make(map[string]*WorkerStatus),
		now:     time.Now,
	}
}

// Add registers a worker in the Pending state. Re-adding a name is a no-op.
func (r *Registry) Add(name string, cpu int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[name]; !exists {
		r.workers[name] = &WorkerStatus{
			Name:  name,
			CPU:   cpu,
			State: Pending,
		}
	}
}

// MarkRunning records that the worker has started.
func (r *Registry) MarkRunning(name string, pinned bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[name]
	if !ok {
		return
	}
	w.State = Running
	w.Pinned = pinned
	w.StartedAt = r.now()
}

// MarkTerminated records that the worker returned on its own.
func (r *Registry) MarkTerminated(name, reason string) {
	r.finish(name, Terminated, reason)
}

// MarkStopped records that the worker returned because the run ended.
func (r *Registry) MarkStopped(name string) {
	r.finish(name, Stopped, "")
}

func (r *Registry) finish(name string, state WorkerState, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[name]
	if !ok || w.State != Running {
		return
	}
	w.State = state
	w.Reason = reason
	w.StoppedAt = r.now()
}

// State returns the current state of name.
func (r *Registry) State(name string) (WorkerState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workers[name]
	if !ok {
		return Pending, false
	}
	return w.State, true
}

// Terminated reports whether name returned on its own before the run ended.
func (r *Registry) Terminated(name string) bool {
	state, ok := r.State(name)
	return ok && state == Terminated
}

// Snapshot returns a copy of every worker status, ordered by CPU index.
func (r *Registry) Snapshot() []WorkerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]WorkerStatus, 0, len(r.workers))
	for _, w := range r.workers {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CPU < out[j].CPU })
	return out
}
