//go:build linux

package sched

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

type platform struct{}

// Apply requests SCHED_FIFO at the assigned priority for the calling thread
// and optionally pins it to a single logical core. Policy and affinity are
// applied independently, so an EPERM on the policy still leaves the pin in
// place.
func (platform) Apply(a Assignment) error {
	var errs []error

	if a.Priority > 0 {
		attr := unix.SchedAttr{
			Size:     unix.SizeofSchedAttr,
			Policy:   unix.SCHED_FIFO,
			Priority: uint32(a.Priority),
		}
		if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
			errs = append(errs, fmt.Errorf("setting SCHED_FIFO priority %d: %w", a.Priority, err))
		}
	}

	if a.Core != NoCore {
		var set unix.CPUSet
		set.Zero()
		set.Set(a.Core)
		if err := unix.SchedSetaffinity(0, &set); err != nil {
			errs = append(errs, fmt.Errorf("pinning to core %d: %w", a.Core, err))
		}
	}

	return errors.Join(errs...)
}

// Preemptions reads the involuntary context switch count of the calling
// thread from its resource usage accounting.
func (platform) Preemptions() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return 0, fmt.Errorf("reading thread rusage: %w", err)
	}
	return uint64(ru.Nivcsw), nil
}
