package interfaces

// TimerController is the machine-facing contract for the 4-channel timer
// chain (spec.md §4.5).
type TimerController interface {
	OnCntWrite(channel int)
	ReadCounter(channel int) uint16
}
