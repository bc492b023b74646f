package backup

import (
	"fmt"

	"GoBA/internal/interfaces"
	"GoBA/internal/state"
)

const sramSize = 32 * 1024

// SRAM is a plain battery-backed byte array at 0x0E000000-0x0E007FFF
// (spec.md §4.8), 8-bit accesses only, mirrored above its own size.
type SRAM struct {
	data  [sramSize]byte
	dirty bool
}

var _ interfaces.Backup = (*SRAM)(nil)

func NewSRAM() *SRAM { return &SRAM{} }

func (s *SRAM) Read(addr uint32) uint8 {
	return s.data[addr%sramSize]
}

func (s *SRAM) Write(addr uint32, value uint8) {
	off := addr % sramSize
	if s.data[off] != value {
		s.dirty = true
	}
	s.data[off] = value
}

func (s *SRAM) Load(data []byte) error {
	if len(data) != sramSize {
		return fmt.Errorf("backup: SRAM image must be exactly %d bytes, got %d", sramSize, len(data))
	}
	copy(s.data[:], data)
	s.dirty = false
	return nil
}

func (s *SRAM) Save() []byte {
	out := make([]byte, sramSize)
	copy(out, s.data[:])
	s.dirty = false
	return out
}

func (s *SRAM) Dirty() bool { return s.dirty }

// SaveState captures the full byte array and dirty flag without the
// Save()/Load() pair's side effect of clearing dirty — that flag tells a
// host when to persist the battery-backed image to disk, and a save-state
// snapshot must not silently clear it (spec.md §6).
func (s *SRAM) SaveState(w *state.Writer) {
	w.Bytes(s.data[:])
	w.Bool(s.dirty)
}

func (s *SRAM) LoadState(r *state.Reader) {
	copy(s.data[:], r.Bytes(sramSize))
	s.dirty = r.Bool()
}
