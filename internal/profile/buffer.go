package profile

import (
	"fmt"
	"sync"
)

// node is an internal linked list node for the event buffer.
type node struct {
	event Event
	next  *node
}

// EventBuffer is a thread-safe buffer that keeps timeline events in
// timestamp order before they are flushed to the store. Events arrive from
// five tasks through one channel and can land slightly out of order; the
// buffer re-sorts them on insert so batches hit the database already
// ordered.
type EventBuffer struct {
	capacity   int // maximum number of events to hold
	flushCount int // number of events to drain when the buffer is full

	mu   sync.Mutex
	head *node
	tail *node
	size int
}

// NewEventBuffer creates a buffer that holds up to capacity events and
// releases flushCount of the oldest ones per flush. Returns an error if
// the parameters are inconsistent.
func NewEventBuffer(capacity, flushCount int) (*EventBuffer, error) {
	if capacity <= 0 || flushCount <= 0 || flushCount > capacity {
		return nil, fmt.Errorf("invalid buffer parameters: capacity=%d, flushCount=%d", capacity, flushCount)
	}
	return &EventBuffer{
		capacity:   capacity,
		flushCount: flushCount,
	}, nil
}

// Insert adds an event, keeping the buffer sorted by timestamp. Most
// events arrive in order and append at the tail; the list walk only
// happens for late arrivals.
func (b *EventBuffer) Insert(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := &node{event: ev}

	if b.head == nil {
		b.head = n
		b.tail = n
		b.size++
		return
	}

	if !ev.Timestamp.Before(b.tail.event.Timestamp) {
		b.tail.next = n
		b.tail = n
		b.size++
		return
	}

	if ev.Timestamp.Before(b.head.event.Timestamp) {
		n.next = b.head
		b.head = n
		b.size++
		return
	}

	current := b.head
	for current.next != nil && !ev.Timestamp.Before(current.next.event.Timestamp) {
		current = current.next
	}
	n.next = current.next
	current.next = n
	b.size++
}

// IsFull returns true if the buffer has reached its capacity.
func (b *EventBuffer) IsFull() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size >= b.capacity
}

// Flush removes and returns the oldest events from the buffer, at least
// flushCount of them plus any overflow beyond capacity. Returns nil if the
// buffer is empty.
func (b *EventBuffer) Flush() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.head == nil || b.size == 0 {
		return nil
	}

	count := b.flushCount
	if b.size > b.capacity {
		count += b.size - b.capacity
	}
	count = min(count, b.size)

	return b.detach(count)
}

// DrainAll removes and returns every buffered event. Returns nil if the
// buffer is empty.
func (b *EventBuffer) DrainAll() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.head == nil || b.size == 0 {
		return nil
	}

	return b.detach(b.size)
}

// Size returns the current number of buffered events.
func (b *EventBuffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// detach removes count events from the front of the list. Callers must
// hold the lock.
func (b *EventBuffer) detach(count int) []Event {
	results := make([]Event, 0, count)
	current := b.head
	for i := 0; i < count && current != nil; i++ {
		results = append(results, current.event)
		current = current.next
	}

	b.head = current
	if b.head == nil {
		b.tail = nil
	}
	b.size -= len(results)
	return results
}
