package harness

import (
	"context"
	"math"

	"github.com/roman-kulish/drone-rt-profiler/internal/drone"
	"github.com/roman-kulish/drone-rt-profiler/internal/profile"
	"github.com/roman-kulish/drone-rt-profiler/internal/telemetry"
)

const (
	throttleStep = 10
	throttleMax  = 100
	tiltAngle    = 15
)

// runCommand ingests ground-station tokens: a non-blocking poll of the
// transport link with a short idle sleep when nothing is pending.
func (h *Harness) runCommand(ctx context.Context) {
	h.applyAssignment(profile.TaskCommand, h.config.Command)

	var tracker preemptTracker

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		token, ok := h.link.PollCommand()
		if !ok {
			sleepFor(ctx, h.config.CommandIdle)
			continue
		}

		preempts := h.preemptions()
		if tracker.bumped(preempts) {
			h.record(profile.TaskCommand, profile.EventPreempted, preempts)
		}

		h.stats.RecordPacket(preempts)
		h.record(profile.TaskCommand, profile.EventPacket, preempts)

		h.applyCommand(token, preempts)
	}
}

// applyCommand mutates the shared state for a single token. Tokens are
// matched exactly and case-sensitively; anything unrecognised is dropped
// without comment.
func (h *Harness) applyCommand(token string, preempts uint64) {
	switch token {
	case "PANIC":
		h.logger.Warn("PANIC received, raising failsafe")
		h.stats.SetEmergencyStatus(telemetry.StatusTriggered)
		h.record(profile.TaskCommand, profile.EventEmergency, preempts)
		h.state.RaiseEmergency()

	case "UP":
		h.state.Update(func(att *drone.Attitude, _ bool) {
			att.Throttle = math.Min(throttleMax, att.Throttle+throttleStep)
		})

	case "DOWN":
		h.state.Update(func(att *drone.Attitude, _ bool) {
			att.Throttle = math.Max(0, att.Throttle-throttleStep)
		})

	case "FRONT":
		h.state.Update(func(att *drone.Attitude, _ bool) {
			att.Pitch = tiltAngle
		})

	case "BACK":
		h.state.Update(func(att *drone.Attitude, _ bool) {
			att.Pitch = -tiltAngle
		})

	case "LEFT":
		h.state.Update(func(att *drone.Attitude, _ bool) {
			att.Roll = -tiltAngle
		})

	case "RIGHT":
		h.state.Update(func(att *drone.Attitude, _ bool) {
			att.Roll = tiltAngle
		})

	case "STOP":
		h.state.Update(func(att *drone.Attitude, _ bool) {
			att.Pitch = 0
			att.Roll = 0
		})
	}
}
