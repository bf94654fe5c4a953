package supervisor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddIsPending(t *testing.T) {
	r := NewRegistry()
	r.Add("primary", 0)

	state, ok := r.State("primary")
	assert.True(t, ok)
	assert.Equal(t, Pending, state)

	_, ok = r.State("missing")
	assert.False(t, ok)
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	r.Add("primary", 0)
	r.Add("detector", 1)

	r.MarkRunning("primary", true)
	r.MarkRunning("detector", false)

	r.MarkTerminated("primary", "intrinsic fault")
	r.MarkStopped("detector")

	snap := r.Snapshot()
	require.Len(t, snap, 2)

	assert.Equal(t, Terminated, snap[0].State)
	assert.True(t, snap[0].Pinned)
	assert.Equal(t, "intrinsic fault", snap[0].Reason)
	assert.False(t, snap[0].StoppedAt.IsZero())

	assert.Equal(t, Stopped, snap[1].State)
	assert.False(t, snap[1].Pinned)
}

func TestRegistryTerminated(t *testing.T) {
	r := NewRegistry()
	r.Add("primary", 0)
	r.Add("detector", 1)
	assert.False(t, r.Terminated("primary"))

	r.MarkRunning("primary", false)
	r.MarkRunning("detector", false)
	r.MarkTerminated("primary", "intrinsic fault")
	r.MarkStopped("detector")

	assert.True(t, r.Terminated("primary"))
	assert.False(t, r.Terminated("detector"))
	assert.False(t, r.Terminated("ghost"))
}

func TestRegistryFinishRequiresRunning(t *testing.T) {
	r := NewRegistry()
	r.Add("corrector", 2)

	r.MarkStopped("corrector")
	state, _ := r.State("corrector")
	assert.Equal(t, Pending, state)

	r.MarkRunning("corrector", false)
	r.MarkStopped("corrector")
	r.MarkTerminated("corrector", "late")
	state, _ = r.State("corrector")
	assert.Equal(t, Stopped, state, "a finished worker keeps its first final state")
}

func TestRegistryUnknownWorkerNoPanic(t *testing.T) {
	r := NewRegistry()

	assert.NotPanics(t, func() {
		r.MarkRunning("ghost", true)
		r.MarkTerminated("ghost", "x")
		r.MarkStopped("ghost")
	})
}

func TestRegistrySnapshotOrderedAndCopied(t *testing.T) {
	r := NewRegistry()
	r.Add("reporter", 3)
	r.Add("primary", 0)
	r.Add("corrector", 2)
	r.Add("detector", 1)

	snap := r.Snapshot()
	names := make([]string, 0, len(snap))
	for _, w := range snap {
		names = append(names, w.Name)
	}
	assert.Equal(t, []string{"primary", "detector", "corrector", "reporter"}, names)

	snap[0].State = Terminated
	state, _ := r.State("primary")
	assert.Equal(t, Pending, state)
}

func TestWorkerStateJSON(t *testing.T) {
	data, err := json.Marshal(WorkerStatus{Name: "primary", State: Running})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"state":"running"`)
	assert.NotContains(t, string(data), "stopped_at")
}
