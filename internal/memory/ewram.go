package memory

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/state"
)

// EWRAM is the 256 KiB external work RAM, mirrored every 256 KiB across its
// whole region; internal/bus folds the mirror before indexing in here, so
// offsets reaching this device are already masked to [0, EWRAM_SIZE).
type EWRAM struct {
	data [EWRAM_SIZE]byte
}

var _ interfaces.MemoryDevice = (*EWRAM)(nil)

func NewEWRAM() *EWRAM {
	return &EWRAM{}
}

func (e *EWRAM) Contains(addr uint32) bool {
	return addr >= EWRAM_START && addr <= EWRAM_END
}

func (e *EWRAM) Read8(addr uint32) uint8 {
	return e.data[addr%EWRAM_SIZE]
}

func (e *EWRAM) ReadHalfWord(addr uint32) uint16 {
	off := addr % EWRAM_SIZE
	return uint16(e.data[off]) | uint16(e.data[off+1])<<8
}

func (e *EWRAM) ReadWord(addr uint32) uint32 {
	off := addr % EWRAM_SIZE
	return uint32(e.data[off]) | uint32(e.data[off+1])<<8 |
		uint32(e.data[off+2])<<16 | uint32(e.data[off+3])<<24
}

func (e *EWRAM) Write8(addr uint32, value uint8) {
	e.data[addr%EWRAM_SIZE] = value
}

func (e *EWRAM) WriteHalfWord(addr uint32, value uint16) {
	off := addr % EWRAM_SIZE
	e.data[off] = byte(value)
	e.data[off+1] = byte(value >> 8)
}

func (e *EWRAM) WriteWord(addr uint32, value uint32) {
	off := addr % EWRAM_SIZE
	e.data[off] = byte(value)
	e.data[off+1] = byte(value >> 8)
	e.data[off+2] = byte(value >> 16)
	e.data[off+3] = byte(value >> 24)
}

// Clear zeroes the backing array (spec.md §6's reset() "Clear RAM" step).
func (e *EWRAM) Clear() { e.data = [EWRAM_SIZE]byte{} }

func (e *EWRAM) SaveState(w *state.Writer) { w.Bytes(e.data[:]) }
func (e *EWRAM) LoadState(r *state.Reader) { copy(e.data[:], r.Bytes(EWRAM_SIZE)) }
