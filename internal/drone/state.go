package drone

import "sync"

// Attitude is the full actuation and motion state of the airframe. All six
// fields and the emergency flag are mutated together under the State lock;
// a reader never observes a partially applied update.
type Attitude struct {
	Throttle float64 // commanded thrust, percent, clamped to [0, 100]
	Pitch    float64 // degrees, forward positive
	Roll     float64 // degrees, right positive
	Yaw      float64 // degrees
	Altitude float64 // meters above ground, never negative
	Velocity float64 // vertical speed, m/s
}

// State is the shared drone state. A single mutex serialises every access
// and a condition variable on the same mutex carries the emergency signal
// to its waiter. The emergency flag only ever transitions false -> true.
type State struct {
	mu        sync.Mutex
	cond      *sync.Cond
	att       Attitude
	emergency bool
}

// NewState returns a zeroed drone state on the ground.
func NewState() *State {
	s := &State{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Update runs fn with exclusive access to the attitude. The emergency flag
// is passed in so controllers can react to it within the same critical
// section that mutates the attitude.
func (s *State) Update(fn func(att *Attitude, emergency bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.att, s.emergency)
}

// Snapshot returns a consistent copy of the attitude and the emergency flag.
func (s *State) Snapshot() (Attitude, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.att, s.emergency
}

// RaiseEmergency sets the emergency flag and wakes the waiting failsafe
// task. Calls after the flag is already raised are no-ops, so at most one
// waiter is ever woken.
func (s *State) RaiseEmergency() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emergency {
		return
	}
	s.emergency = true
	s.cond.Signal()
}

// AwaitEmergency blocks the calling task until the emergency flag is
// raised. The lock is released while waiting and the flag is re-checked on
// every wakeup, so spurious wakeups do not leak through.
func (s *State) AwaitEmergency() {
	s.mu.Lock()
	for !s.emergency {
		s.cond.Wait()
	}
	s.mu.Unlock()
}
