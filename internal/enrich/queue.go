package enrich

import (
	"context"
	"sync"
	"time"
)

// enqueueWait bounds how long Enqueue blocks on a full queue before the item
// is dropped.
const enqueueWait = 2 * time.Second

// queue is a bounded FIFO of job ids with one priority lane. Explicitly
// requested jobs go to the head; duplicate enqueues of a pending id coalesce
// to a single slot.
type queue struct {
	mu       sync.Mutex
	high     []string
	normal   []string
	pending  map[string]bool
	capacity int

	// wake is pulsed on every push so a blocked Dequeue retries.
	wake chan struct{}
	// space is pulsed on every pop so a blocked Enqueue retries.
	space chan struct{}

	closed bool
}

func newQueue(capacity int) *queue {
	if capacity <= 0 {
		capacity = 256
	}
	return &queue{
		pending:  make(map[string]bool),
		capacity: capacity,
		wake:     make(chan struct{}, 1),
		space:    make(chan struct{}, 1),
	}
}

func pulse(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Enqueue adds jobID, blocking up to enqueueWait when the queue is full, then
// dropping the item. It reports whether the id is queued (true also for a
// coalesced duplicate).
func (q *queue) Enqueue(ctx context.Context, jobID string, priority bool) bool {
	deadline := time.NewTimer(enqueueWait)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return false
		}
		if q.pending[jobID] {
			if priority {
				q.promoteLocked(jobID)
			}
			q.mu.Unlock()
			return true
		}
		if len(q.high)+len(q.normal) < q.capacity {
			q.pending[jobID] = true
			if priority {
				q.high = append(q.high, jobID)
			} else {
				q.normal = append(q.normal, jobID)
			}
			q.mu.Unlock()
			pulse(q.wake)
			return true
		}
		q.mu.Unlock()

		select {
		case <-q.space:
		case <-deadline.C:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

// promoteLocked moves an already-pending id into the priority lane.
func (q *queue) promoteLocked(jobID string) {
	for i, id := range q.normal {
		if id == jobID {
			q.normal = append(q.normal[:i], q.normal[i+1:]...)
			q.high = append(q.high, jobID)
			return
		}
	}
}

// Dequeue pops the next id, priority lane first, blocking until one is
// available or ctx is done.
func (q *queue) Dequeue(ctx context.Context) (string, bool) {
	for {
		q.mu.Lock()
		if id, ok := q.popLocked(); ok {
			q.mu.Unlock()
			pulse(q.space)
			return id, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			pulse(q.wake) // cascade to other blocked consumers
			return "", false
		}

		select {
		case <-q.wake:
		case <-ctx.Done():
			return "", false
		}
	}
}

func (q *queue) popLocked() (string, bool) {
	if len(q.high) > 0 {
		id := q.high[0]
		q.high = q.high[1:]
		delete(q.pending, id)
		return id, true
	}
	if len(q.normal) > 0 {
		id := q.normal[0]
		q.normal = q.normal[1:]
		delete(q.pending, id)
		return id, true
	}
	return "", false
}

// Len returns how many ids are waiting.
func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.high) + len(q.normal)
}

// Close rejects further enqueues and wakes blocked consumers so they drain
// what remains.
func (q *queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	pulse(q.wake)
}
