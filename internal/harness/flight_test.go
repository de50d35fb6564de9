package harness

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/roman-kulish/drone-rt-profiler/internal/drone"
)

func TestRunFlight_MeetsRelaxedDeadlines(t *testing.T) {
	var out bytes.Buffer
	h, _, stats, _, _ := newTestHarness(t, &out)
	h.config.FlightPeriod = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	h.runFlight(ctx)

	final := stats.Snapshot(false)
	if final.FlightLoops < 2 {
		t.Fatalf("Expected several flight loops, got %d", final.FlightLoops)
	}
	if final.FlightDeadlineMisses != 0 {
		t.Errorf("Expected no deadline misses with a 20ms period, got %d", final.FlightDeadlineMisses)
	}
	if final.FlightExecAvgMicros < 0 {
		t.Errorf("Execution average should be non-negative, got %d", final.FlightExecAvgMicros)
	}
}

func TestRunFlight_DetectsOverruns(t *testing.T) {
	var out bytes.Buffer
	h, _, stats, _, _ := newTestHarness(t, &out)

	// A workload three times the period guarantees the next cycle starts
	// past its absolute deadline.
	h.flightWork = func() {
		time.Sleep(3 * h.config.FlightPeriod)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	h.runFlight(ctx)

	final := stats.Snapshot(false)
	if final.FlightLoops < 2 {
		t.Fatalf("Expected at least two flight loops, got %d", final.FlightLoops)
	}
	if final.FlightDeadlineMisses == 0 {
		t.Error("Overrunning workload should register deadline misses")
	}
}

func TestRunFlight_EmergencyFreezesMotion(t *testing.T) {
	var out bytes.Buffer
	h, state, _, _, _ := newTestHarness(t, &out)

	state.Update(func(att *drone.Attitude, _ bool) {
		att.Throttle = 100
		att.Pitch = 15
		att.Altitude = 5
	})
	state.RaiseEmergency()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	h.runFlight(ctx)

	att, _ := state.Snapshot()
	if att.Throttle != 0 || att.Pitch != 0 {
		t.Errorf("Flight loop should cut actuation under emergency: %+v", att)
	}
	if att.Altitude != 5 {
		t.Errorf("Integration must stop under emergency, altitude moved to %.3f", att.Altitude)
	}
}
