package telemetry

import "sync"

// EmergencyStatus tracks the failsafe lifecycle. Transitions are monotonic:
// Standby -> Triggered -> Active.
type EmergencyStatus int

const (
	StatusStandby EmergencyStatus = iota
	StatusTriggered
	StatusActive
)

func (s EmergencyStatus) String() string {
	switch s {
	case StatusTriggered:
		return "TRIGGERED"
	case StatusActive:
		return "ACTIVE"
	default:
		return "STANDBY"
	}
}

// Stats is a copy of every task counter taken at one instant.
//
// Loop, packet, frame and deadline-miss counters are monotonic
// non-decreasing except where the monitor explicitly resets the rate-style
// ones (CommandPackets, VisionFrames, VisionBytes) after reading them.
type Stats struct {
	FlightLoops          uint64
	FlightExecAvgMicros  int64
	FlightPreempts       uint64
	FlightDeadlineMisses uint64

	CommandPackets      uint64 // since the last monitor reset
	CommandPacketsTotal uint64
	CommandPreempts     uint64

	VisionFrames      uint64 // since the last monitor reset
	VisionFramesTotal uint64
	VisionBytes       uint64 // since the last monitor reset
	VisionBytesTotal  uint64
	VisionPreempts    uint64

	EmergencyWakeups  uint64
	EmergencyPreempts uint64
	Emergency         EmergencyStatus
}

// Registry collects task measurements behind its own lock, deliberately
// disjoint from the drone state lock so that profiling writes never couple
// with control-loop critical sections.
type Registry struct {
	mu sync.Mutex
	s  Stats
}

func NewRegistry() *Registry {
	return &Registry{}
}

// RecordFlightCycle folds one control-loop execution time into the rolling
// average (new = (old + sample) / 2) and refreshes the flight thread's
// preemption count.
func (r *Registry) RecordFlightCycle(execMicros int64, preempts uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.FlightLoops++
	r.s.FlightExecAvgMicros = (r.s.FlightExecAvgMicros + execMicros) / 2
	r.s.FlightPreempts = max(r.s.FlightPreempts, preempts)
}

// RecordDeadlineMiss counts one flight cycle that started after its
// absolute deadline.
func (r *Registry) RecordDeadlineMiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.FlightDeadlineMisses++
}

// RecordPacket counts one received command token.
func (r *Registry) RecordPacket(preempts uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.CommandPackets++
	r.s.CommandPacketsTotal++
	r.s.CommandPreempts = max(r.s.CommandPreempts, preempts)
}

// RecordFrame counts one captured or synthesised frame of size bytes.
func (r *Registry) RecordFrame(bytes uint64, preempts uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.VisionFrames++
	r.s.VisionFramesTotal++
	r.s.VisionBytes += bytes
	r.s.VisionBytesTotal += bytes
	r.s.VisionPreempts = max(r.s.VisionPreempts, preempts)
}

// RecordEmergencyWakeup counts one failsafe activation.
func (r *Registry) RecordEmergencyWakeup(preempts uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.EmergencyWakeups++
	r.s.EmergencyPreempts = max(r.s.EmergencyPreempts, preempts)
}

// SetEmergencyStatus advances the failsafe status. Backward transitions are
// ignored, keeping the Standby -> Triggered -> Active order monotonic.
func (r *Registry) SetEmergencyStatus(status EmergencyStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status > r.s.Emergency {
		r.s.Emergency = status
	}
}

// Snapshot returns a copy of the current counters. When resetRates is true
// the per-interval rate counters (command packets, vision frames and bytes)
// are zeroed after the copy, which is how the monitor turns them into
// packets/sec and fps readings. Only the monitor should pass true.
func (r *Registry) Snapshot(resetRates bool) Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.s
	if resetRates {
		r.s.CommandPackets = 0
		r.s.VisionFrames = 0
		r.s.VisionBytes = 0
	}
	return out
}
