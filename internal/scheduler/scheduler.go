// Package scheduler implements the monotonically-advancing priority event
// queue (spec.md §4.3) that drives PPU period transitions, timer overflow,
// DMA dispatch delays and audio sample emission. Nothing here is GBA-specific;
// it is a plain (deadline, event-id) min-heap with cancel-by-id and
// insertion-order tie-breaking.
package scheduler

import (
	"container/heap"

	"GoBA/internal/state"
)

// EventID names a scheduled event so callers can replace or cancel it.
type EventID uint32

// Callback is invoked when an event's deadline has been reached. late is the
// number of cycles by which the event was overdue (current counter minus the
// deadline), letting callbacks like the PPU correct for scheduling slop.
type Callback func(late int64)

type entry struct {
	id       EventID
	deadline int64
	seq      uint64 // insertion order, breaks deadline ties FIFO
	callback Callback
	index    int // heap index, maintained by container/heap
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler owns the current cycle counter and the pending event heap.
type Scheduler struct {
	now     int64
	heap    entryHeap
	byID    map[EventID]*entry
	nextSeq uint64
}

// New constructs an empty scheduler with the counter at zero.
func New() *Scheduler {
	return &Scheduler{
		byID: make(map[EventID]*entry),
	}
}

// Now returns the current absolute cycle counter.
func (s *Scheduler) Now() int64 {
	return s.now
}

// Add enqueues callback to fire delayCycles from now under id. If an entry
// with the same id already exists it is replaced (per spec.md §4.3).
func (s *Scheduler) Add(id EventID, delayCycles int64, callback Callback) {
	s.Remove(id)
	e := &entry{
		id:       id,
		deadline: s.now + delayCycles,
		seq:      s.nextSeq,
		callback: callback,
	}
	s.nextSeq++
	s.byID[id] = e
	heap.Push(&s.heap, e)
}

// Remove cancels a pending event. No-op if id is not scheduled.
func (s *Scheduler) Remove(id EventID) {
	e, ok := s.byID[id]
	if !ok {
		return
	}
	heap.Remove(&s.heap, e.index)
	delete(s.byID, id)
}

// Pending reports whether id currently has an outstanding event.
func (s *Scheduler) Pending(id EventID) bool {
	_, ok := s.byID[id]
	return ok
}

// NextDeadline returns the soonest pending deadline and true, or (0, false)
// if the queue is empty. Used by the waitloop detector to fast-forward.
func (s *Scheduler) NextDeadline() (int64, bool) {
	if len(s.heap) == 0 {
		return 0, false
	}
	return s.heap[0].deadline, true
}

// Deadline returns id's pending deadline and true, or (0, false) if it has
// none outstanding. Used by save-state capture: rather than serialize a
// scheduler entry's callback (a closure bound to a live subsystem instance,
// not data), each subsystem records how many cycles remain until its own
// event fires and re-derives the callback itself on load (spec.md §6, §9).
func (s *Scheduler) Deadline(id EventID) (int64, bool) {
	e, ok := s.byID[id]
	if !ok {
		return 0, false
	}
	return e.deadline, true
}

// SetNow forcibly sets the absolute cycle counter, used only by LoadState to
// restore the exact point a snapshot was taken from. Never call this during
// normal operation — Advance is the only legitimate way to move Now forward.
func (s *Scheduler) SetNow(cycles int64) { s.now = cycles }

// Advance bills n cycles to the global counter and fires any events that are
// now due. Callbacks run synchronously and must not call Advance themselves
// (per spec.md §4.3); they may re-enqueue via Add.
func (s *Scheduler) Advance(n int64) {
	s.now += n
	s.fire()
}

// fire drains every entry whose deadline has been reached, lowest deadline
// first, FIFO among ties.
func (s *Scheduler) fire() {
	for len(s.heap) > 0 && s.heap[0].deadline <= s.now {
		e := heap.Pop(&s.heap).(*entry)
		delete(s.byID, e.id)
		late := s.now - e.deadline
		e.callback(late)
	}
}

// FastForward jumps the counter directly to the next pending deadline and
// fires it, skipping the intervening idle cycles. Used by the waitloop
// detector once a polling loop has been confirmed skippable; it is a no-op
// if nothing is scheduled.
func (s *Scheduler) FastForward() {
	deadline, ok := s.NextDeadline()
	if !ok {
		return
	}
	if deadline > s.now {
		s.now = deadline
	}
	s.fire()
}

// SaveState writes only the absolute cycle counter (spec.md §6). The pending
// event heap holds callbacks bound to live subsystem instances, not plain
// data, so it is never serialized directly — every subsystem that has an
// outstanding event re-arms it from its own restored state instead (each
// such package's LoadState/Resync documents this).
func (s *Scheduler) SaveState(w *state.Writer) {
	w.I64(s.now)
}

func (s *Scheduler) LoadState(r *state.Reader) {
	s.SetNow(r.I64())
}
