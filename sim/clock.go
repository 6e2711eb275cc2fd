package sim

import (
	"container/heap"
	"math"
)

// eventEntry wraps an Event with a sequence ID for deterministic FIFO
// tie-breaking when timestamps are equal.
type eventEntry struct {
	event Event
	seqID int64
}

// eventQueue is a min-heap ordered by (Timestamp, seqID).
// Implements heap.Interface.
type eventQueue []eventEntry

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].event.Timestamp() != q[j].event.Timestamp() {
		return q[i].event.Timestamp() < q[j].event.Timestamp()
	}
	return q[i].seqID < q[j].seqID
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) {
	*q = append(*q, x.(eventEntry))
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = eventEntry{}
	*q = old[:n-1]
	return item
}

// EventClock owns simulated time and the pending event queue.
// Time only moves forward: Advance sets Now to the popped event's timestamp,
// and Schedule rejects events in the past. Events past the horizon stay
// queued but are never returned.
type EventClock struct {
	now     float64
	horizon float64
	queue   eventQueue
	nextSeq int64
}

// NewEventClock creates a clock at t=0 that stops at horizon.
func NewEventClock(horizon float64) *EventClock {
	c := &EventClock{
		horizon: horizon,
		queue:   make(eventQueue, 0),
	}
	heap.Init(&c.queue)
	return c
}

// Schedule queues ev. Events at the same timestamp fire in schedule order.
func (c *EventClock) Schedule(ev Event) error {
	t := ev.Timestamp()
	if math.IsNaN(t) || t < c.now {
		return &LogicError{Op: "schedule", Time: t, Clock: c.now}
	}
	heap.Push(&c.queue, eventEntry{event: ev, seqID: c.nextSeq})
	c.nextSeq++
	return nil
}

// Advance pops the earliest event and moves Now to its timestamp.
// Returns false when the queue is empty or the next event lies past the horizon.
func (c *EventClock) Advance() (Event, bool) {
	if len(c.queue) == 0 || c.queue[0].event.Timestamp() > c.horizon {
		return nil, false
	}
	entry := heap.Pop(&c.queue).(eventEntry)
	c.now = entry.event.Timestamp()
	return entry.event, true
}

// Peek returns the next event without removing it, or nil if none is queued.
func (c *EventClock) Peek() Event {
	if len(c.queue) == 0 {
		return nil
	}
	return c.queue[0].event
}

// Now returns the current simulated time.
func (c *EventClock) Now() float64 { return c.now }

// Horizon returns the time after which no event fires.
func (c *EventClock) Horizon() float64 { return c.horizon }

// Pending returns the number of queued events, including any past the horizon.
func (c *EventClock) Pending() int { return len(c.queue) }
