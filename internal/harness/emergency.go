package harness

import (
	"context"

	"github.com/roman-kulish/drone-rt-profiler/internal/drone"
	"github.com/roman-kulish/drone-rt-profiler/internal/profile"
	"github.com/roman-kulish/drone-rt-profiler/internal/telemetry"
)

// runEmergency is the sporadic failsafe. It blocks on the emergency
// predicate, and once woken runs the bounded shutdown sequence exactly
// once: mark the status active, wait out the grace delay so the monitor
// and recorder capture final values, cut actuation and stop every task.
func (h *Harness) runEmergency(ctx context.Context) {
	h.applyAssignment(profile.TaskEmergency, h.config.Emergency)

	h.state.AwaitEmergency()

	preempts := h.preemptions()
	h.stats.RecordEmergencyWakeup(preempts)
	h.stats.SetEmergencyStatus(telemetry.StatusActive)
	h.record(profile.TaskEmergency, profile.EventEmergency, preempts)

	h.logger.Warn("failsafe active, beginning shutdown sequence")

	sleepFor(ctx, h.config.GraceDelay)

	h.state.Update(func(att *drone.Attitude, _ bool) {
		drone.CutActuation(att)
	})

	h.logger.Info("actuation outputs cut, stopping all tasks")
	if h.stop != nil {
		h.stop()
	}
}
