package profile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roman-kulish/drone-rt-profiler/internal/drone"
	"github.com/roman-kulish/drone-rt-profiler/internal/telemetry"
)

func TestStore_SessionRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "test.sqlite"))
	defer store.Close()

	ctx := context.Background()

	id, err := store.CreateSession(ctx, "single-core", map[string]int{"flight_priority": 50})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if id <= 0 {
		t.Fatalf("Expected positive session ID, got %d", id)
	}

	session, err := store.Session(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if session.ID != id {
		t.Errorf("Expected session ID %d, got %d", id, session.ID)
	}
	if session.Mode != "single-core" {
		t.Errorf("Expected mode single-core, got %q", session.Mode)
	}
	if session.Config == nil {
		t.Error("Expected JSON-serialized config to be stored")
	}
}

func TestStore_EventsRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "test.sqlite"))
	defer store.Close()

	ctx := context.Background()

	id, err := store.CreateSession(ctx, "multi-core", nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	baseTime := time.Now().UTC().Truncate(time.Millisecond)
	events := []Event{
		{Timestamp: baseTime, Task: TaskFlight, Kind: EventStart},
		{Timestamp: baseTime.Add(time.Millisecond), Task: TaskFlight, Kind: EventEnd, Preemptions: 2},
		{Timestamp: baseTime.Add(2 * time.Millisecond), Task: TaskCommand, Kind: EventPacket, Preemptions: 1},
	}

	if err = store.BatchInsertEvents(ctx, id, events); err != nil {
		t.Fatalf("Failed to insert events: %v", err)
	}

	results, err := store.Events(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load events: %v", err)
	}
	if len(results) != len(events) {
		t.Fatalf("Expected %d events, got %d", len(events), len(results))
	}

	for i, want := range events {
		got := results[i]
		if got.Task != want.Task || got.Kind != want.Kind || got.Preemptions != want.Preemptions {
			t.Errorf("Event %d: expected %+v, got %+v", i, want, got)
		}
		if !got.Timestamp.Equal(want.Timestamp) {
			t.Errorf("Event %d: expected timestamp %v, got %v", i, want.Timestamp, got.Timestamp)
		}
	}

	// Empty batches are a no-op, not an error.
	if err = store.BatchInsertEvents(ctx, id, nil); err != nil {
		t.Errorf("Empty batch should succeed: %v", err)
	}
}

func TestStore_StoreSnapshot(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "test.sqlite"))
	defer store.Close()

	ctx := context.Background()

	id, err := store.CreateSession(ctx, "multi-core", nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	snap := Snapshot{
		Timestamp: time.Now(),
		Stats: telemetry.Stats{
			FlightExecAvgMicros:  120,
			FlightDeadlineMisses: 1,
			CommandPackets:       4,
			VisionFrames:         30,
			VisionBytes:          45000,
			Emergency:            telemetry.StatusStandby,
		},
		Attitude: drone.Attitude{Altitude: 3.2, Throttle: 50},
	}

	if err = store.StoreSnapshot(ctx, id, snap); err != nil {
		t.Fatalf("Failed to store snapshot: %v", err)
	}

	// Close is idempotent and creates the read indexes.
	if err = store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err = store.Close(); err != nil {
		t.Errorf("Second close should be a no-op: %v", err)
	}
}
