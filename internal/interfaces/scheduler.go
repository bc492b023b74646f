package interfaces

import "GoBA/internal/scheduler"

// Scheduler is the contract subsystems use to arm and cancel cycle-deadline
// events (spec.md §4.3), so DMA/timer/PPU/waitloop depend on this interface
// rather than each other, per spec.md §9's "single owning container" design
// note.
type Scheduler interface {
	Now() int64
	Add(id scheduler.EventID, delayCycles int64, callback func(late int64))
	Remove(id scheduler.EventID)
	Pending(id scheduler.EventID) bool
	NextDeadline() (int64, bool)
	Deadline(id scheduler.EventID) (int64, bool)
	Advance(n int64)
	FastForward()
	SetNow(cycles int64)
}
