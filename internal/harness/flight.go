package harness

import (
	"context"
	"math"
	"time"

	"github.com/roman-kulish/drone-rt-profiler/internal/drone"
	"github.com/roman-kulish/drone-rt-profiler/internal/profile"
)

// flightWorkIterations sizes the synthetic control-law workload so one
// flight cycle costs roughly what the original attitude filter did.
const flightWorkIterations = 2000

var workSink float64

// busyWork is the control-law stand-in: pure CPU, no allocation, no
// suspension point.
func busyWork() {
	x := 0.0
	for i := 0; i < flightWorkIterations; i++ {
		x += 0.0001 * math.Sin(float64(i)*0.001)
	}
	workSink = x
}

// runFlight is the periodic controller. Every cycle computes the next
// absolute deadline as previous deadline + period, records a miss if the
// cycle starts late, integrates the vertical model under the state lock
// and sleeps until the absolute deadline.
func (h *Harness) runFlight(ctx context.Context) {
	h.applyAssignment(profile.TaskFlight, h.config.Flight)

	dt := h.config.FlightPeriod.Seconds()
	var tracker preemptTracker

	deadline := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		deadline = deadline.Add(h.config.FlightPeriod)

		preempts := h.preemptions()
		h.record(profile.TaskFlight, profile.EventStart, preempts)
		if tracker.bumped(preempts) {
			h.record(profile.TaskFlight, profile.EventPreempted, preempts)
		}

		// Late at cycle start means the previous cycle overran its slot.
		if time.Now().After(deadline) {
			h.stats.RecordDeadlineMiss()
			h.record(profile.TaskFlight, profile.EventDeadlineMiss, preempts)
		}

		start := time.Now()
		h.state.Update(func(att *drone.Attitude, emergency bool) {
			if emergency {
				drone.CutActuation(att)
				return
			}
			h.flightWork()
			drone.Integrate(att, dt)
		})
		exec := time.Since(start)

		preempts = h.preemptions()
		h.stats.RecordFlightCycle(exec.Microseconds(), preempts)
		h.record(profile.TaskFlight, profile.EventEnd, preempts)

		sleepUntil(ctx, deadline)
	}
}
