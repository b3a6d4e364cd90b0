package simulation

import (
	"container/heap"
	"time"
)

// event is a scheduled action on the logical clock. Events due at the same
// instant run in scheduling order.
type event struct {
	at   time.Duration
	seq  int64
	name string
	run  func()
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return x
}

// peek returns the next due event without removing it.
func (q eventQueue) peek() (*event, bool) {
	if len(q) == 0 {
		return nil, false
	}
	return q[0], true
}

// scheduler owns the logical clock and the pending events.
type scheduler struct {
	now time.Duration
	seq int64
	q   eventQueue
}

func (s *scheduler) schedule(at time.Duration, name string, fn func()) {
	if at < s.now {
		at = s.now
	}
	s.seq++
	heap.Push(&s.q, &event{at: at, seq: s.seq, name: name, run: fn})
}

func (s *scheduler) after(d time.Duration, name string, fn func()) {
	s.schedule(s.now+d, name, fn)
}

// step runs the next event if it is due at or before limit.
func (s *scheduler) step(limit time.Duration) bool {
	ev, ok := s.q.peek()
	if !ok || ev.at > limit {
		return false
	}
	heap.Pop(&s.q)
	s.now = ev.at
	ev.run()
	return true
}

func (s *scheduler) pending() int { return s.q.Len() }

func (s *scheduler) clear() { s.q = s.q[:0] }
