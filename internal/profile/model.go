// Package profile records scheduling-timeline events and periodic stat
// snapshots into a sqlite database, so a run under contention can be
// analysed after the fact without the observation perturbing the tasks.
package profile

import (
	"time"

	"github.com/roman-kulish/drone-rt-profiler/internal/drone"
	"github.com/roman-kulish/drone-rt-profiler/internal/telemetry"
)

// Task names as stored in timeline events.
const (
	TaskFlight    = "flight"
	TaskVision    = "vision"
	TaskCommand   = "command"
	TaskEmergency = "emergency"
	TaskMonitor   = "monitor"
)

// Timeline event kinds.
const (
	EventStart        = "start"
	EventEnd          = "end"
	EventPreempted    = "preempted"
	EventDeadlineMiss = "deadline_miss"
	EventPacket       = "packet"
	EventFrame        = "frame"
	EventEmergency    = "emergency"
)

// Event is a single point on a task's timeline.
type Event struct {
	Timestamp   time.Time
	Task        string
	Kind        string
	Preemptions uint64
}

// Session describes one recorded harness run.
type Session struct {
	ID        int64
	StartTime time.Time
	Mode      string // "single-core" or "multi-core"
	Config    *string
}

// Snapshot is one monitor-interval view of the registries, persisted so
// rate counters survive their reset.
type Snapshot struct {
	Timestamp time.Time
	Stats     telemetry.Stats
	Attitude  drone.Attitude
}
