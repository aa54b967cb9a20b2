package event

import (
	"errors"
	"sync"
)

var (
	// ErrQueueFull means the consumer has stalled or the queue is too small.
	ErrQueueFull = errors.New("event: queue full")
	// ErrCapacity is returned for capacities that are not a power of two.
	ErrCapacity = errors.New("event: capacity must be a power of two >= 2")
)

// Queue is a fixed size ring of events for one consumer. The read and write
// indices run freely and are masked on access, so the ring holds exactly
// Cap events.
type Queue struct {
	cs    sync.Locker
	slots []Event
	mask  uint32
	rd    uint32
	wr    uint32
}

type QueueOption func(*Queue)

// WithLocker replaces the critical section guarding the indices, e.g. with a
// sync.Mutex.
func WithLocker(l sync.Locker) QueueOption {
	return func(q *Queue) {
		q.cs = l
	}
}

func NewQueue(capacity int, opts ...QueueOption) (*Queue, error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, ErrCapacity
	}
	q := &Queue{
		cs:    &SpinLock{},
		slots: make([]Event, capacity),
		mask:  uint32(capacity - 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Put enqueues e. The slot copy happens inside the critical section so a
// wrapped producer cannot overwrite it before the write index advances.
func (q *Queue) Put(e Event) error {
	q.cs.Lock()
	defer q.cs.Unlock()
	if q.wr-q.rd == uint32(len(q.slots)) {
		return ErrQueueFull
	}
	q.slots[q.wr&q.mask] = e
	q.wr++
	return nil
}

// Get dequeues the oldest event. It never blocks.
func (q *Queue) Get() (Event, bool) {
	q.cs.Lock()
	defer q.cs.Unlock()
	if q.rd == q.wr {
		return Event{}, false
	}
	i := q.rd & q.mask
	e := q.slots[i]
	q.slots[i] = Event{}
	q.rd++
	return e, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.cs.Lock()
	defer q.cs.Unlock()
	return int(q.wr - q.rd)
}

func (q *Queue) Cap() int { return len(q.slots) }
