package simulation

import (
	"errors"
	"sync"
	"time"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

var ErrQueueFull = errors.New("queue is full")

// Entry is a waiting vehicle with the logical times it joined the queue and
// gives up on it.
type Entry struct {
	Vehicle  *domain.Vehicle
	QueuedAt time.Duration
	Deadline time.Duration
}

// Queue is the bounded FIFO of vehicles waiting for a pump. Leaving the
// queue goes through the vehicle's status CAS, so a vehicle that is handed
// to a pump can never also be recorded as abandoned, and vice versa.
type Queue struct {
	mu       sync.Mutex
	items    []Entry
	capacity int
}

func NewQueue(capacity int) *Queue {
	return &Queue{capacity: capacity}
}

// Enqueue appends v, or returns ErrQueueFull.
func (q *Queue) Enqueue(v *domain.Vehicle, now, deadline time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, Entry{Vehicle: v, QueuedAt: now, Deadline: deadline})
	return nil
}

// DequeueForPump removes the head of the queue and marks it assigned.
// Entries that lost the race to an abandonment are discarded.
func (q *Queue) DequeueForPump() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) > 0 {
		head := q.items[0]
		q.items[0] = Entry{}
		q.items = q.items[1:]
		if head.Vehicle.CompareAndSwapStatus(domain.VehicleQueued, domain.VehicleAssigned) {
			return head, true
		}
	}
	return Entry{}, false
}

// Abandon removes the vehicle with the given id if it is still waiting.
// It reports false when the vehicle has already been assigned or removed.
func (q *Queue) Abandon(vehicleID string) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.items {
		if e.Vehicle.ID != vehicleID {
			continue
		}
		if !e.Vehicle.CompareAndSwapStatus(domain.VehicleQueued, domain.VehicleAbandoned) {
			return Entry{}, false
		}
		q.items = append(q.items[:i], q.items[i+1:]...)
		return e, true
	}
	return Entry{}, false
}

// AbandonAll empties the queue, marking every waiting vehicle abandoned.
func (q *Queue) AbandonAll() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Entry, 0, len(q.items))
	for _, e := range q.items {
		if e.Vehicle.CompareAndSwapStatus(domain.VehicleQueued, domain.VehicleAbandoned) {
			out = append(out, e)
		}
	}
	q.items = nil
	return out
}

// SetCapacity changes the bound for future enqueues. Vehicles already
// waiting beyond a reduced bound stay in line.
func (q *Queue) SetCapacity(n int) {
	q.mu.Lock()
	q.capacity = n
	q.mu.Unlock()
}

func (q *Queue) Capacity() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
