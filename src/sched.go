package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Real-time scheduling setup for the worker threads.
 *
 * Description:	The timing loop needs sub-125us jitter, which on a
 *		multi-core SBC is achievable with a busy loop pinned
 *		to an otherwise idle core.  The encoder gets its own
 *		core so its bursts never preempt the loop.
 *
 *		Each worker locks its goroutine to an OS thread and
 *		then sets the affinity of that thread (tid 0 = self).
 *		SCHED_FIFO and mlockall are best effort; without root
 *		they fail and the generator still runs, just with
 *		more jitter.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"golang.org/x/sys/unix"
)

/* Must be called with the goroutine already locked to its thread. */
func set_cpu_affinity(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)

	if affErr := unix.SchedSetaffinity(0, &mask); affErr != nil {
		return fmt.Errorf("pinning to CPU %d: %w", cpu, affErr)
	}

	return nil
}

func set_realtime_priority(priority int) error {
	var attr = unix.SchedAttr{
		Policy:   unix.SCHED_FIFO,
		Priority: uint32(priority),
	}

	if schedErr := unix.SchedSetAttr(0, &attr, 0); schedErr != nil {
		return fmt.Errorf("setting SCHED_FIFO priority %d: %w", priority, schedErr)
	}

	return nil
}

/* Keep the sample path from ever taking a page fault. */
func lock_memory() error {
	if mlockErr := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); mlockErr != nil {
		return fmt.Errorf("mlockall: %w", mlockErr)
	}

	return nil
}
