// Package io holds the raw I/O register backing store (0x04000000..0x040003FF)
// plus its per-register readability/writability/write-mask table (spec.md
// §4.2). It intentionally knows nothing about DMA/timers/PPU: on-write side
// effects (enabling a DMA channel, starting a timer, clearing IF bits) are
// dispatched by internal/bus, which is the one component allowed to hold
// pointers to every subsystem (spec.md §9's single owning container note).
package io

import "GoBA/internal/state"

// Access describes what CPU-visible operations a byte of I/O space supports.
type Access uint8

const (
	// AccessRW is freely readable and writable (subject to the write mask).
	AccessRW Access = iota
	// AccessRO is readable only; writes are silently dropped.
	AccessRO
	// AccessWO is writable only; reads return open bus.
	AccessWO
)

type regDescriptor struct {
	access    Access
	writeMask uint8 // bits of an incoming write that are actually stored
}

const Size = 0x400

// Regs is the flat I/O register backing store with per-byte access rules.
type Regs struct {
	raw  [Size]byte
	desc [Size]regDescriptor
}

// NewRegs constructs an I/O register file with every byte defaulting to
// read/write-all; callers narrow specific offsets with Describe.
func NewRegs() *Regs {
	r := &Regs{}
	for i := range r.desc {
		r.desc[i] = regDescriptor{access: AccessRW, writeMask: 0xFF}
	}
	return r
}

// Describe narrows the access rule for a single byte offset. Used during
// machine construction to mark write-only registers (e.g. FIFO data ports),
// read-only registers (e.g. VCOUNT) and reserved-bit write masks (e.g. DMA
// control's unused bits).
func (r *Regs) Describe(offset uint32, access Access, writeMask uint8) {
	r.desc[offset] = regDescriptor{access: access, writeMask: writeMask}
}

// Read8 returns the stored byte, or ok=false if the offset is write-only;
// callers apply their own open-bus fallback in that case.
func (r *Regs) Read8(offset uint32) (value uint8, ok bool) {
	d := r.desc[offset]
	if d.access == AccessWO {
		return 0, false
	}
	return r.raw[offset], true
}

// Write8 stores value masked by the offset's write mask; reports whether any
// bits actually changed (letting the bus skip pointless side-effect checks)
// and whether the write was accepted at all.
func (r *Regs) Write8(offset uint32, value uint8) (changed bool, ok bool) {
	d := r.desc[offset]
	if d.access == AccessRO {
		return false, false
	}
	masked := value & d.writeMask
	old := r.raw[offset]
	r.raw[offset] = (old &^ d.writeMask) | masked
	return r.raw[offset] != old, true
}

// RawRead8/RawWrite8 and friends bypass the access table entirely. Used by
// subsystems that own a register's storage directly (DMA/timer latch shadow
// values, PPU's VCOUNT) to keep the array as the single source of truth
// without fighting the access-control layer meant for CPU-facing accesses.
func (r *Regs) RawRead8(offset uint32) uint8 {
	return r.raw[offset]
}

func (r *Regs) RawWrite8(offset uint32, value uint8) {
	r.raw[offset] = value
}

func (r *Regs) RawReadHalf(offset uint32) uint16 {
	return uint16(r.raw[offset]) | uint16(r.raw[offset+1])<<8
}

func (r *Regs) RawWriteHalf(offset uint32, value uint16) {
	r.raw[offset] = byte(value)
	r.raw[offset+1] = byte(value >> 8)
}

func (r *Regs) RawReadWord(offset uint32) uint32 {
	return uint32(r.raw[offset]) | uint32(r.raw[offset+1])<<8 |
		uint32(r.raw[offset+2])<<16 | uint32(r.raw[offset+3])<<24
}

func (r *Regs) RawWriteWord(offset uint32, value uint32) {
	r.raw[offset] = byte(value)
	r.raw[offset+1] = byte(value >> 8)
	r.raw[offset+2] = byte(value >> 16)
	r.raw[offset+3] = byte(value >> 24)
}

// SaveState/LoadState carry the raw backing store only (spec.md §6); the
// per-byte access/write-mask table is rebuilt by internal/bus's setupIORegs
// on every machine construction, not part of a snapshot.
func (r *Regs) SaveState(w *state.Writer) {
	w.Bytes(r.raw[:])
}

func (r *Regs) LoadState(rd *state.Reader) {
	copy(r.raw[:], rd.Bytes(Size))
}
