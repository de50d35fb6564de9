package telemetry

import "testing"

func TestRegistry_FlightAverageSmoothing(t *testing.T) {
	r := NewRegistry()

	// The average folds each sample in as (old + sample) / 2.
	r.RecordFlightCycle(100, 0)
	if got := r.Snapshot(false).FlightExecAvgMicros; got != 50 {
		t.Errorf("After one 100us sample expected average 50, got %d", got)
	}

	r.RecordFlightCycle(100, 0)
	if got := r.Snapshot(false).FlightExecAvgMicros; got != 75 {
		t.Errorf("After two 100us samples expected average 75, got %d", got)
	}

	if got := r.Snapshot(false).FlightLoops; got != 2 {
		t.Errorf("Expected 2 flight loops, got %d", got)
	}
}

func TestRegistry_RateCountersReset(t *testing.T) {
	r := NewRegistry()

	r.RecordPacket(0)
	r.RecordPacket(0)
	r.RecordFrame(1500, 0)
	r.RecordFrame(2000, 0)
	r.RecordFrame(1000, 0)

	stats := r.Snapshot(true)
	if stats.CommandPackets != 2 || stats.VisionFrames != 3 || stats.VisionBytes != 4500 {
		t.Errorf("First snapshot missing counts: %+v", stats)
	}

	// Rate counters were reset by the read; totals must survive.
	stats = r.Snapshot(false)
	if stats.CommandPackets != 0 || stats.VisionFrames != 0 || stats.VisionBytes != 0 {
		t.Errorf("Rate counters should be zero after reset: %+v", stats)
	}
	if stats.CommandPacketsTotal != 2 || stats.VisionFramesTotal != 3 || stats.VisionBytesTotal != 4500 {
		t.Errorf("Totals should survive the rate reset: %+v", stats)
	}
}

func TestRegistry_SnapshotWithoutResetKeepsRates(t *testing.T) {
	r := NewRegistry()
	r.RecordPacket(0)

	if got := r.Snapshot(false).CommandPackets; got != 1 {
		t.Fatalf("Expected 1 packet, got %d", got)
	}
	if got := r.Snapshot(false).CommandPackets; got != 1 {
		t.Errorf("Snapshot without reset must not clear rate counters, got %d", got)
	}
}

func TestRegistry_EmergencyStatusMonotonic(t *testing.T) {
	r := NewRegistry()

	r.SetEmergencyStatus(StatusTriggered)
	if got := r.Snapshot(false).Emergency; got != StatusTriggered {
		t.Errorf("Expected TRIGGERED, got %s", got)
	}

	r.SetEmergencyStatus(StatusActive)
	if got := r.Snapshot(false).Emergency; got != StatusActive {
		t.Errorf("Expected ACTIVE, got %s", got)
	}

	// A late trigger must not demote an active failsafe.
	r.SetEmergencyStatus(StatusTriggered)
	r.SetEmergencyStatus(StatusStandby)
	if got := r.Snapshot(false).Emergency; got != StatusActive {
		t.Errorf("Status should never move backward, got %s", got)
	}
}

func TestRegistry_PreemptCountsNeverDecrease(t *testing.T) {
	r := NewRegistry()

	r.RecordFlightCycle(10, 5)
	r.RecordFlightCycle(10, 3) // stale sample from before a thread restart

	if got := r.Snapshot(false).FlightPreempts; got != 5 {
		t.Errorf("Preempt count should keep its maximum, got %d", got)
	}
}

func TestEmergencyStatus_String(t *testing.T) {
	testCases := []struct {
		status EmergencyStatus
		want   string
	}{
		{StatusStandby, "STANDBY"},
		{StatusTriggered, "TRIGGERED"},
		{StatusActive, "ACTIVE"},
	}

	for _, tc := range testCases {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status %d: expected %q, got %q", tc.status, tc.want, got)
		}
	}
}
