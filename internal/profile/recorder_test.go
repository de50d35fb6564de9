package profile

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRecorder_RecordsTimeline(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "test.sqlite"))
	defer store.Close()

	ctx := context.Background()

	id, err := store.CreateSession(ctx, "multi-core", nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	rec, err := NewRecorder(store, id)
	if err != nil {
		t.Fatalf("Failed to create recorder: %v", err)
	}

	for i := 0; i < 10; i++ {
		rec.Record(TaskFlight, EventStart, uint64(i))
	}

	// Close drains the queue and flushes every buffered event.
	if err = rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err = rec.Close(); err != nil {
		t.Errorf("Second close should be a no-op: %v", err)
	}

	if n := rec.Dropped(); n != 0 {
		t.Errorf("No events should be dropped with an idle queue, got %d", n)
	}

	events, err := store.Events(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load events: %v", err)
	}
	if len(events) != 10 {
		t.Fatalf("Expected 10 events, got %d", len(events))
	}

	for i, ev := range events {
		if ev.Task != TaskFlight || ev.Kind != EventStart {
			t.Errorf("Event %d: unexpected content %+v", i, ev)
		}
		if i > 0 && events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("Event %d out of timestamp order", i)
		}
	}
}

func TestRecorder_InvalidFlushCount(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "test.sqlite"))
	defer store.Close()

	// A non-positive flush count falls back to the default instead of
	// failing.
	rec, err := NewRecorder(store, 1, WithFlushCount(-1))
	if err != nil {
		t.Fatalf("Expected fallback to the default flush count, got %v", err)
	}
	_ = rec.Close()
}
