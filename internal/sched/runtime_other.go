//go:build !linux

package sched

import "errors"

// The host kernel exposes no per-thread scheduling control here. Apply
// reports the missing capability and Preemptions reads as zero, so the
// harness degrades to default scheduling with empty preemption data.
type platform struct{}

func (platform) Apply(a Assignment) error {
	if a.Priority > 0 || a.Core != NoCore {
		return errors.ErrUnsupported
	}
	return nil
}

func (platform) Preemptions() (uint64, error) { return 0, nil }
