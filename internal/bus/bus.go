// Package bus implements the memory-mapped address bus (spec.md §4.2):
// region dispatch, per-region width rules, misalignment rotation and
// open-bus fallback. It is the one component allowed to hold a pointer to
// every subsystem (spec.md §9's "single owning container" note extended down
// one level), since I/O register writes need to fan out to whichever
// controller owns the side effect.
package bus

import (
	"GoBA/internal/apu"
	"GoBA/internal/backup"
	"GoBA/internal/dma"
	"GoBA/internal/interfaces"
	"GoBA/internal/interrupt"
	"GoBA/internal/io"
	"GoBA/internal/joypad"
	"GoBA/internal/memory"
	"GoBA/internal/ppu"
	"GoBA/internal/state"
	"GoBA/internal/timer"
	"GoBA/util/dbg"
)

// Region base/end addresses not already covered by internal/memory's
// BIOS/EWRAM/IWRAM constants.
const (
	ioMirrorEnd = 0x04FFFFFF

	pramSize     = 1024
	pramMirrorEnd = 0x05FFFFFF

	vramSize      = 96 * 1024
	vramMirrorEnd = 0x06FFFFFF

	oamSize      = 1024
	oamMirrorEnd = 0x07FFFFFF

	romWS0End = 0x09FFFFFF
	romWS1Start, romWS1End = 0x0A000000, 0x0BFFFFFF
	romWS2Start, romWS2End = 0x0C000000, 0x0DFFFFFF

	// eepromStart/End is the top of the WS2 ROM mirror real carts reuse for
	// EEPROM serial access when the backup variant is EEPROM (spec.md §4.8).
	eepromStart, eepromEnd = 0x0D000000, 0x0DFFFFFF

	backupMirrorEnd = 0x0FFFFFFF
)

// Bus wires the CPU's address space to every backing store and controller.
// It owns PRAM/VRAM/OAM directly (no subsystem claims them, since pixel
// composition is out of scope) and dispatches I/O register touches to
// whichever controller owns that register's side effect.
type Bus struct {
	bios  *memory.BIOS
	ewram *memory.EWRAM
	iwram *memory.IWRAM
	regs  *io.Regs

	pram [pramSize]byte
	vram [vramSize]byte
	oam  [oamSize]byte

	rom      []byte
	backup   interfaces.Backup
	isEEPROM bool // true when the 0x0D000000 window routes to backup, not ROM

	ppu     *ppu.PPU
	apu     *apu.Controller
	dmaCtrl *dma.Controller
	timers  *timer.Controller
	irqs    *interrupt.Controller
	keys    *joypad.Controller
	sched   interfaces.Scheduler

	haltRequested bool

	lastOpcode uint32 // last word fetched, for open-bus fallback
}

// New builds a Bus with its own backing memories but none of the sibling
// controllers wired in yet. apu, dma and timer each need a BusInterface (or
// each other) to construct, so Bus can't take them as constructor
// arguments without a cycle; call Wire once they all exist.
func New(
	bios *memory.BIOS,
	ewram *memory.EWRAM,
	iwram *memory.IWRAM,
	regs *io.Regs,
	sched interfaces.Scheduler,
) *Bus {
	b := &Bus{
		bios: bios, ewram: ewram, iwram: iwram, regs: regs,
		sched:  sched,
		backup: backup.NewNone(),
	}
	b.setupIORegs()
	return b
}

// Wire attaches the sibling controllers once all of them have been
// constructed, completing the two-phase construction New starts. Nothing on
// Bus dereferences these fields until a Read/Write/Reset call happens, so it
// is safe for every subsystem constructor that takes the Bus itself (as
// interfaces.BusInterface) to run before this is called.
func (b *Bus) Wire(
	ppuCtrl *ppu.PPU,
	apuCtrl *apu.Controller,
	dmaCtrl *dma.Controller,
	timers *timer.Controller,
	irqs *interrupt.Controller,
	keys *joypad.Controller,
) {
	b.ppu = ppuCtrl
	b.apu = apuCtrl
	b.dmaCtrl = dmaCtrl
	b.timers = timers
	b.irqs = irqs
	b.keys = keys
}

// setupIORegs narrows the access rules for registers with CPU-visible
// restrictions beyond plain read/write (spec.md §4.2). Most of I/O space is
// left at NewRegs' default read/write-all; only registers the bus actually
// special-cases here need description.
func (b *Bus) setupIORegs() {
	b.regs.Describe(io.VCOUNT, io.AccessRO, 0)
	b.regs.Describe(io.VCOUNT+1, io.AccessRO, 0)
	b.regs.Describe(io.DISPSTAT, io.AccessRW, 0xF8) // bits 0-2 are hardware-set only
	b.regs.Describe(io.KEYINPUT, io.AccessRO, 0)
	b.regs.Describe(io.KEYINPUT+1, io.AccessRO, 0)
	for _, off := range []uint32{io.FIFO_A, io.FIFO_A + 1, io.FIFO_A + 2, io.FIFO_A + 3,
		io.FIFO_B, io.FIFO_B + 1, io.FIFO_B + 2, io.FIFO_B + 3} {
		b.regs.Describe(off, io.AccessWO, 0xFF)
	}
	b.regs.Describe(io.HALTCNT, io.AccessWO, 0xFF)
}

// SetupTables rebuilds region-dispatch state after a BIOS/ROM mapping change
// (spec.md §4.2). Region masks here are computed from len(rom) on every
// access rather than cached, so this is idempotent by construction; it
// exists to satisfy the component contract and as the hook a future bus
// redesign (e.g. precomputed mirror tables) would extend.
func (b *Bus) SetupTables() {}

// SetROM installs the cartridge image, readable across the three wait-state
// mirrors (spec.md §3).
func (b *Bus) SetROM(rom []byte) { b.rom = rom }

// SetBackup installs the active backup variant (spec.md §4.8). eeprom tells
// the bus whether to route the 0x0D000000-0x0DFFFFFF ROM-mirror window to
// it instead of treating that range as ordinary ROM — real carts never have
// both EEPROM and SRAM/Flash, so exactly one routing is ever live.
func (b *Bus) SetBackup(bk interfaces.Backup, eeprom bool) {
	b.backup = bk
	b.isEEPROM = eeprom
}

// IsEEPROMActive reports whether the active backup variant is EEPROM,
// wired into internal/dma's isEEPROM hook (spec.md §4.8, SPEC_FULL.md §C.3).
func (b *Bus) IsEEPROMActive() bool { return b.isEEPROM }

// Reset clears PPU/interrupt transient state and the haltRequested flag;
// timer/DMA/joypad state is reset separately by internal/machine's Reset. BIOS/EWRAM/IWRAM/PRAM/VRAM/OAM contents, the ROM image
// and the backup variant are left untouched (spec.md's load_rom/load_bios
// govern those).
func (b *Bus) Reset() {
	b.haltRequested = false
	b.irqs.Reset()
	b.ppu.Reset()
}

// HaltRequested reports whether a write to HALTCNT has put the CPU in a
// halted state; the CPU's Step clears it once IE & IF becomes non-zero
// (spec.md §4.4).
func (b *Bus) HaltRequested() bool { return b.haltRequested }
func (b *Bus) ClearHaltRequested()  { b.haltRequested = false }

// ClearRAM zeroes PRAM/VRAM/OAM, the three work-RAM-like regions Bus itself
// backs. internal/machine's Reset calls this alongside EWRAM.Clear/
// IWRAM.Clear to satisfy spec.md §6's "reset(): Clear RAM" step; kept
// separate from Reset above since that method's own contract (documented
// there) is scoped to transient subsystem state, not backing storage.
func (b *Bus) ClearRAM() {
	b.pram = [pramSize]byte{}
	b.vram = [vramSize]byte{}
	b.oam = [oamSize]byte{}
}

// Tick bills cycles to the scheduler, driving every subsystem's scheduled
// events (PPU period transitions, timer overflow, DMA immediate dispatch) —
// the scheduler-based replacement for a per-tick fan-out to each subsystem's
// own Tick method.
func (b *Bus) Tick(cycles int) {
	b.sched.Advance(int64(cycles))
}

var _ interfaces.BusInterface = (*Bus)(nil)

// Read8 dispatches a byte read by address region (spec.md §3's memory map).
func (b *Bus) Read8(addr uint32) uint8 {
	switch {
	case addr <= memory.BIOS_END:
		return b.bios.Read8(addr)

	case addr >= memory.EWRAM_START && addr <= 0x02FFFFFF:
		return b.ewram.Read8((addr - memory.EWRAM_START) % memory.EWRAM_SIZE)

	case addr >= memory.IWRAM_START && addr <= 0x03FFFFFF:
		return b.iwram.Read8((addr - memory.IWRAM_START) % memory.IWRAM_SIZE)

	case addr >= memory.IO_START && addr <= ioMirrorEnd:
		return b.readIO8((addr - memory.IO_START) % io.Size)

	case addr >= memory.PRAM_START && addr <= pramMirrorEnd:
		return b.pram[(addr-memory.PRAM_START)%pramSize]

	case addr >= memory.VRAM_START && addr <= vramMirrorEnd:
		return b.vram[vramOffset(addr)]

	case addr >= memory.OAM_START && addr <= oamMirrorEnd:
		return b.oam[(addr-memory.OAM_START)%oamSize]

	case b.isEEPROM && addr >= eepromStart && addr <= eepromEnd:
		return b.backup.Read(addr - eepromStart)

	case addr >= memory.ROM_START && addr <= romWS0End,
		addr >= romWS1Start && addr <= romWS1End,
		addr >= romWS2Start && addr <= romWS2End:
		return b.readROM8(addr)

	case addr >= memory.BACKUP_START && addr <= backupMirrorEnd:
		return b.backup.Read(addr - memory.BACKUP_START)

	default:
		return b.openBus8(addr)
	}
}

// Write8 dispatches a byte write by address region (spec.md §3).
func (b *Bus) Write8(addr uint32, value uint8) {
	switch {
	case addr <= memory.BIOS_END:
		// BIOS is read-only.

	case addr >= memory.EWRAM_START && addr <= 0x02FFFFFF:
		b.ewram.Write8((addr-memory.EWRAM_START)%memory.EWRAM_SIZE, value)

	case addr >= memory.IWRAM_START && addr <= 0x03FFFFFF:
		b.iwram.Write8((addr-memory.IWRAM_START)%memory.IWRAM_SIZE, value)

	case addr >= memory.IO_START && addr <= ioMirrorEnd:
		b.writeIO8((addr-memory.IO_START)%io.Size, value)

	case addr >= memory.PRAM_START && addr <= pramMirrorEnd:
		// 8-bit writes replicate to the aligned halfword (spec.md §3).
		off := (addr - memory.PRAM_START) % pramSize
		b.pram[off&^1] = value
		b.pram[off|1] = value

	case addr >= memory.VRAM_START && addr <= vramMirrorEnd:
		// 8-bit writes replicate to the aligned halfword in the bitmap/
		// tile-data region, but are silently ignored in the OBJ region
		// (spec.md §3), the same as OAM. The boundary between the two is
		// mode-dependent: bitmap modes 3-5 give OBJ tiles less room.
		off := vramOffset(addr)
		if off >= objVRAMBase(b.regs.RawReadHalf(io.DISPCNT)) {
			return
		}
		b.vram[off&^1] = value
		b.vram[off|1] = value

	case addr >= memory.OAM_START && addr <= oamMirrorEnd:
		// 8-bit writes to OAM are ignored (spec.md §3).

	case b.isEEPROM && addr >= eepromStart && addr <= eepromEnd:
		b.backup.Write(addr-eepromStart, value)

	case addr >= memory.ROM_START && addr <= romWS2End:
		dbg.Printf("bus: write to read-only ROM at %08X\n", addr)

	case addr >= memory.BACKUP_START && addr <= backupMirrorEnd:
		b.backup.Write(addr-memory.BACKUP_START, value)

	default:
		// Open-bus: writes to unmapped memory are silently dropped.
	}
}

// vramOffset folds a VRAM address into [0, vramSize), honoring the
// 96 KiB-then-mirror-the-last-32 KiB layout real hardware uses above
// 0x06010000 within each 128 KiB mirror step.
func vramOffset(addr uint32) uint32 {
	local := (addr - memory.VRAM_START) % 0x20000
	if local >= uint32(vramSize) {
		local -= 0x8000
	}
	return local
}

// objVRAMBase returns the VRAM offset where OBJ tile data begins, read off
// DISPCNT's video-mode field: bitmap modes (3-5) give the bitmap frame
// buffer the first 0x14000 bytes; tile modes (0-2) only reserve 0x10000.
func objVRAMBase(dispcnt uint16) uint32 {
	if dispcnt&0b111 >= 3 {
		return 0x14000
	}
	return 0x10000
}

// readROM8 resolves any of the three wait-state mirrors to the same
// underlying image, open-bus past its end (spec.md §3).
func (b *Bus) readROM8(addr uint32) uint8 {
	if len(b.rom) == 0 {
		return b.openBus8(addr)
	}
	off := addr & 0x01FFFFFF
	if int(off) >= len(b.rom) {
		return b.openBus8(addr)
	}
	return b.rom[off]
}

// openBus8 returns the byte of the last fetched opcode that addr's low two
// bits select, the closest this
// core gets to real open-bus behavior (spec.md §3's "last value placed on
// the prefetch bus").
func (b *Bus) openBus8(addr uint32) uint8 {
	shift := (addr & 3) * 8
	return uint8(b.lastOpcode >> shift)
}

// Read16 applies the odd-address rotate-by-8 rule (spec.md §3) on top of an
// aligned halfword assembled from two byte reads.
func (b *Bus) Read16(addr uint32) uint16 {
	aligned := addr &^ 1
	half := uint16(b.Read8(aligned)) | uint16(b.Read8(aligned+1))<<8
	// Thumb fetches are the dominant caller of Read16; broadcasting the
	// halfword across both lanes of lastOpcode keeps open-bus fallback
	// serving the last Thumb opcode instead of a stale ARM word (spec.md §3).
	b.lastOpcode = uint32(half) | uint32(half)<<16
	if addr&1 != 0 {
		half = half>>8 | half<<8
	}
	return half
}

// Write16 force-aligns; the bus has no documented write-side rotation rule.
// PRAM/VRAM/OAM store the halfword as is, without the byte-write rules.
func (b *Bus) Write16(addr uint32, value uint16) {
	aligned := addr &^ 1
	switch {
	case aligned >= memory.PRAM_START && aligned <= pramMirrorEnd:
		off := (aligned - memory.PRAM_START) % pramSize
		b.pram[off], b.pram[off+1] = uint8(value), uint8(value>>8)
		return
	case aligned >= memory.VRAM_START && aligned <= vramMirrorEnd:
		off := vramOffset(aligned)
		b.vram[off], b.vram[off+1] = uint8(value), uint8(value>>8)
		return
	case aligned >= memory.OAM_START && aligned <= oamMirrorEnd:
		off := (aligned - memory.OAM_START) % oamSize
		b.oam[off], b.oam[off+1] = uint8(value), uint8(value>>8)
		return
	}
	b.Write8(aligned, uint8(value))
	b.Write8(aligned+1, uint8(value>>8))
}

// Read32 implements the universal misalignment invariant (spec.md §8):
// read32(A) == rotr(aligned_read32(A & ~3), (A & 3) * 8).
func (b *Bus) Read32(addr uint32) uint32 {
	aligned := addr &^ 3
	word := uint32(b.Read8(aligned)) |
		uint32(b.Read8(aligned+1))<<8 |
		uint32(b.Read8(aligned+2))<<16 |
		uint32(b.Read8(aligned+3))<<24
	b.lastOpcode = word
	shift := (addr & 3) * 8
	if shift == 0 {
		return word
	}
	return word>>shift | word<<(32-shift)
}

// Write32 force-aligns, and is the path DMA/CPU STR use to feed the FIFO
// data ports (spec.md §4.6's special-mode burst).
func (b *Bus) Write32(addr uint32, value uint32) {
	aligned := addr &^ 3
	if aligned >= memory.IO_START && aligned <= ioMirrorEnd {
		local := (aligned - memory.IO_START) % io.Size
		switch local {
		case io.FIFO_A:
			b.apu.OnFIFOWrite32(0, value)
			return
		case io.FIFO_B:
			b.apu.OnFIFOWrite32(1, value)
			return
		}
	}
	b.Write16(aligned, uint16(value))
	b.Write16(aligned+2, uint16(value>>16))
}

// readIO8 returns a byte of I/O space, preferring whichever controller owns
// the register's live value over the raw backing store (spec.md §4.2):
// timer counters are interpolated rather than stored, IE/IF/IME/KEYINPUT/
// KEYCNT live in their own controllers entirely.
func (b *Bus) readIO8(local uint32) uint8 {
	switch {
	case local == io.IE || local == io.IE+1:
		return byteOf(uint32(b.irqs.ReadIE()), local-io.IE)
	case local == io.IF || local == io.IF+1:
		return byteOf(uint32(b.irqs.ReadIF()), local-io.IF)
	case local >= io.IME && local < io.IME+4:
		return byteOf(b.irqs.ReadIME(), local-io.IME)
	case local == io.KEYINPUT || local == io.KEYINPUT+1:
		return byteOf(uint32(b.keys.ReadKeyInput()), local-io.KEYINPUT)
	case local == io.KEYCNT || local == io.KEYCNT+1:
		return byteOf(uint32(b.keys.ReadKeyCnt()), local-io.KEYCNT)
	}

	if i, ok := timerCounterChannel(local); ok {
		base := timerCntLOffset(i)
		return byteOf(uint32(b.timers.ReadCounter(i)), local-base)
	}

	value, ok := b.regs.Read8(local)
	if !ok {
		return b.openBus8(memory.IO_START + local)
	}
	return value
}

// writeIO8 stores a byte through the access table, then fans out whatever
// on-write side effect that register carries (spec.md §4.2).
func (b *Bus) writeIO8(local uint32, value uint8) {
	switch {
	case local == io.IE || local == io.IE+1:
		b.irqs.WriteIE(mergedHalf(uint32(b.irqs.ReadIE()), local-io.IE, value))
		return
	case local == io.IF || local == io.IF+1:
		b.irqs.WriteIF(uint16(value) << ((local - io.IF) * 8))
		return
	case local >= io.IME && local < io.IME+4:
		b.irqs.WriteIME(mergedWord(b.irqs.ReadIME(), local-io.IME, value))
		return
	case local == io.KEYCNT || local == io.KEYCNT+1:
		b.keys.WriteKeyCnt(mergedHalf(uint32(b.keys.ReadKeyCnt()), local-io.KEYCNT, value))
		return
	case local == io.HALTCNT:
		b.haltRequested = true
		return
	}

	_, ok := b.regs.Write8(local, value)
	if !ok {
		return
	}

	if i, ok := dmaCntHChannel(local); ok {
		b.dmaCtrl.OnCntWrite(i)
		return
	}
	if i, ok := timerCntHChannel(local); ok {
		b.timers.OnCntWrite(i)
		return
	}
}

func byteOf(v uint32, index uint32) uint8 { return uint8(v >> (index * 8)) }

func mergedHalf(current uint32, index uint32, value uint8) uint16 {
	half := uint16(current)
	shift := index * 8
	half = half&^(0xFF<<shift) | uint16(value)<<shift
	return half
}

func mergedWord(current uint32, index uint32, value uint8) uint32 {
	shift := index * 8
	return current&^(0xFF<<shift) | uint32(value)<<shift
}

func dmaCntHChannel(local uint32) (int, bool) {
	bases := [4]uint32{io.DMA0CNT_H, io.DMA1CNT_H, io.DMA2CNT_H, io.DMA3CNT_H}
	for i, base := range bases {
		if local == base || local == base+1 {
			return i, true
		}
	}
	return 0, false
}

func timerCntHChannel(local uint32) (int, bool) {
	bases := [4]uint32{io.TM0CNT_H, io.TM1CNT_H, io.TM2CNT_H, io.TM3CNT_H}
	for i, base := range bases {
		if local == base || local == base+1 {
			return i, true
		}
	}
	return 0, false
}

func timerCounterChannel(local uint32) (int, bool) {
	bases := [4]uint32{io.TM0CNT_L, io.TM1CNT_L, io.TM2CNT_L, io.TM3CNT_L}
	for i, base := range bases {
		if local == base || local == base+1 {
			return i, true
		}
	}
	return 0, false
}

func timerCntLOffset(i int) uint32 {
	bases := [4]uint32{io.TM0CNT_L, io.TM1CNT_L, io.TM2CNT_L, io.TM3CNT_L}
	return bases[i]
}

// SaveState captures the video/object memories the bus owns directly plus
// its own transient flags (spec.md §6's mem section). The ROM image and
// backup variant are governed by load_rom, not a snapshot; EWRAM/IWRAM/IO
// registers are saved by their own owning packages.
func (b *Bus) SaveState(w *state.Writer) {
	w.Bytes(b.pram[:])
	w.Bytes(b.vram[:])
	w.Bytes(b.oam[:])
	w.Bool(b.haltRequested)
	w.U32(b.lastOpcode)
}

func (b *Bus) LoadState(r *state.Reader) {
	copy(b.pram[:], r.Bytes(pramSize))
	copy(b.vram[:], r.Bytes(vramSize))
	copy(b.oam[:], r.Bytes(oamSize))
	b.haltRequested = r.Bool()
	b.lastOpcode = r.U32()
}
