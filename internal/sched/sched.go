package sched

import (
	"sync"
)

// NoCore disables CPU pinning for a task.
const NoCore = -1

// Assignment describes the fixed-priority scheduling parameters requested
// for a single task thread. A zero Priority leaves the thread on the
// default time-sharing policy. Core is a logical CPU index, or NoCore to
// keep the kernel's own placement.
type Assignment struct {
	Priority int
	Core     int
}

// Interface abstracts the privileged scheduling operations of the host
// kernel. Apply and Preemptions act on the calling thread, so callers must
// hold their goroutine on a fixed OS thread with runtime.LockOSThread
// before using either.
type Interface interface {
	// Apply requests fixed-priority preemptive scheduling and an optional
	// CPU pin for the calling thread. A failure means the process lacks the
	// privilege; callers log it and continue at default priority.
	Apply(a Assignment) error

	// Preemptions reports the cumulative number of involuntary context
	// switches of the calling thread since it started. The count is
	// monotonic non-decreasing within a thread's lifetime.
	Preemptions() (uint64, error)
}

// New returns the scheduling interface for the host platform.
func New() Interface { return platform{} }

// Simulated is an Interface with deterministic, caller-controlled
// preemption counts. It records every applied Assignment and never fails,
// standing in for the kernel on platforms or in tests where no privilege
// is available.
type Simulated struct {
	mu       sync.Mutex
	applied  []Assignment
	preempts uint64
}

func (s *Simulated) Apply(a Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, a)
	return nil
}

func (s *Simulated) Preemptions() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preempts, nil
}

// AddPreemptions advances the simulated involuntary-context-switch count.
func (s *Simulated) AddPreemptions(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preempts += n
}

// Applied returns a copy of every Assignment passed to Apply, in order.
func (s *Simulated) Applied() []Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Assignment, len(s.applied))
	copy(out, s.applied)
	return out
}
