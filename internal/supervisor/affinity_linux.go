//go:build linux

package supervisor

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// threadPinner locks the goroutine to its OS thread and sets that thread's
// affinity mask to a single CPU. The lock is held until the goroutine exits.
type threadPinner struct{}

func (threadPinner) Pin(cpu int) error {
	if cpu < 0 || cpu >= runtime.NumCPU() {
		return fmt.Errorf("cpu %d out of range (have %d)", cpu, runtime.NumCPU())
	}

	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("sched_setaffinity cpu %d: %w", cpu, err)
	}
	return nil
}
