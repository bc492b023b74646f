package memory

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/state"
)

// IWRAM is the 32 KiB internal work RAM, mirrored every 32 KiB.
type IWRAM struct {
	data [IWRAM_SIZE]byte
}

var _ interfaces.MemoryDevice = (*IWRAM)(nil)

func NewIWRAM() *IWRAM {
	return &IWRAM{}
}

func (i *IWRAM) Contains(addr uint32) bool {
	return addr >= IWRAM_START && addr <= IWRAM_END
}

func (i *IWRAM) Read8(addr uint32) uint8 {
	return i.data[addr%IWRAM_SIZE]
}

func (i *IWRAM) ReadHalfWord(addr uint32) uint16 {
	off := addr % IWRAM_SIZE
	return uint16(i.data[off]) | uint16(i.data[off+1])<<8
}

func (i *IWRAM) ReadWord(addr uint32) uint32 {
	off := addr % IWRAM_SIZE
	return uint32(i.data[off]) | uint32(i.data[off+1])<<8 |
		uint32(i.data[off+2])<<16 | uint32(i.data[off+3])<<24
}

func (i *IWRAM) Write8(addr uint32, value uint8) {
	i.data[addr%IWRAM_SIZE] = value
}

func (i *IWRAM) WriteHalfWord(addr uint32, value uint16) {
	off := addr % IWRAM_SIZE
	i.data[off] = byte(value)
	i.data[off+1] = byte(value >> 8)
}

func (i *IWRAM) WriteWord(addr uint32, value uint32) {
	off := addr % IWRAM_SIZE
	i.data[off] = byte(value)
	i.data[off+1] = byte(value >> 8)
	i.data[off+2] = byte(value >> 16)
	i.data[off+3] = byte(value >> 24)
}

// Clear zeroes the backing array (spec.md §6's reset() "Clear RAM" step).
func (i *IWRAM) Clear() { i.data = [IWRAM_SIZE]byte{} }

func (i *IWRAM) SaveState(w *state.Writer) { w.Bytes(i.data[:]) }
func (i *IWRAM) LoadState(r *state.Reader) { copy(i.data[:], r.Bytes(IWRAM_SIZE)) }
