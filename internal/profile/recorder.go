package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	eventBacklog      = 256
	defaultBufferCap  = 512
	defaultFlushCount = 128
)

// WithLogger sets the logger for the recorder.
func WithLogger(logger *slog.Logger) func(r *Recorder) {
	return func(r *Recorder) {
		r.logger = logger.With(slog.Int64("session", r.sessionID))
	}
}

// WithFlushCount sets the batch size of events written to the store within
// a single transaction.
func WithFlushCount(count int) func(r *Recorder) {
	return func(r *Recorder) {
		if count > 0 {
			r.flushCount = count
		}
	}
}

// Recorder fans timeline events from the real-time tasks into the
// profiling store without ever blocking them: Record is a non-blocking
// channel send and a full queue drops the sample instead of stalling the
// emitter.
type Recorder struct {
	store     *Store
	sessionID int64

	flushCount int
	events     chan Event
	buf        *EventBuffer
	dropped    atomic.Uint64

	wg        sync.WaitGroup
	closeOnce sync.Once

	logger *slog.Logger
}

// NewRecorder creates a recorder for the given session and starts its
// drain goroutine.
func NewRecorder(store *Store, sessionID int64, options ...func(r *Recorder)) (*Recorder, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	r := Recorder{
		store:      store,
		sessionID:  sessionID,
		flushCount: defaultFlushCount,
		events:     make(chan Event, eventBacklog),
		logger:     logger,
	}

	for _, option := range options {
		option(&r)
	}

	capacity := max(defaultBufferCap, r.flushCount*2)
	buf, err := NewEventBuffer(capacity, r.flushCount)
	if err != nil {
		return nil, fmt.Errorf("creating event buffer: %w", err)
	}
	r.buf = buf

	r.wg.Add(1)
	go r.drain()

	return &r, nil
}

// Record queues a timeline event stamped with the current time. When the
// queue is full the event is dropped; losing a profiling sample is
// preferable to stalling a real-time task.
func (r *Recorder) Record(task, kind string, preemptions uint64) {
	select {
	case r.events <- Event{Timestamp: time.Now(), Task: task, Kind: kind, Preemptions: preemptions}:
	default:
		r.dropped.Add(1)
	}
}

// Snapshot persists one monitor-interval view of the registries. Called
// from the monitor task only, which holds no locks while storing.
func (r *Recorder) Snapshot(snap Snapshot) {
	if err := r.store.StoreSnapshot(context.Background(), r.sessionID, snap); err != nil {
		r.logger.Error(fmt.Sprintf("storing snapshot: %s", err.Error()))
	}
}

// Dropped reports how many events were discarded because the queue was
// full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close flushes every buffered event and stops the drain goroutine. Safe
// to call multiple times.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.events)
		r.wg.Wait()

		if n := r.dropped.Load(); n > 0 {
			r.logger.Warn(fmt.Sprintf("dropped %d timeline events under load", n))
		}
	})
	return nil
}

func (r *Recorder) drain() {
	defer r.wg.Done()

	for ev := range r.events {
		r.buf.Insert(ev)
		if r.buf.IsFull() {
			r.flush(r.buf.Flush())
		}
	}

	r.flush(r.buf.DrainAll())
}

func (r *Recorder) flush(events []Event) {
	if len(events) == 0 {
		return
	}
	if err := r.store.BatchInsertEvents(context.Background(), r.sessionID, events); err != nil {
		r.logger.Error(fmt.Sprintf("storing timeline events: %s", err.Error()))
	}
}
