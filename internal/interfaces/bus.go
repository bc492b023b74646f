package interfaces

// BusInterface is the CPU's view of the memory-mapped bus (spec.md §4.2):
// region-decoded byte/half/word read/write with open-bus fallback and
// misalignment rotation already applied by the implementation.
type BusInterface interface {
	Read8(uint32) uint8
	Write8(uint32, uint8)
	Read16(uint32) uint16
	Write16(uint32, uint16)
	Read32(uint32) uint32
	Write32(uint32, uint32)
	Tick(cycles int)
}
