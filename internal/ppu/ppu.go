// Package ppu implements only the PPU's scanline/mode timing state machine
// (spec.md §4's PPU row: "spec only its interface, not its rendering").
// Pixel composition is an explicit non-goal; what remains is the
// H-draw/H-blank/V-blank cadence that drives DMA triggers, the interrupt
// controller, and the host-facing vblank/hblank callbacks (spec.md §6).
package ppu

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/io"
	"GoBA/internal/scheduler"
	"GoBA/internal/state"
)

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	CyclesPerHDraw    = 960
	CyclesPerHBlank   = 272
	CyclesPerScanline = CyclesPerHDraw + CyclesPerHBlank
	VisibleScanlines  = 160
	ScanlinesPerFrame = 228
)

const (
	dispstatVBlank      = 1 << 0
	dispstatHBlank      = 1 << 1
	dispstatVCountMatch = 1 << 2
	dispstatVBlankIRQ   = 1 << 3
	dispstatHBlankIRQ   = 1 << 4
	dispstatVCountIRQ   = 1 << 5
)

const eventID = scheduler.EventID(0x3000)

// PPU tracks the scanline/dot position and fires the period-boundary
// side effects a real PPU would: DMA hblank/vblank triggers, VBlank/HBlank/
// VCounter interrupts, and host callbacks. It owns DISPCNT/DISPSTAT/VCOUNT's
// raw storage directly (spec.md §9's banked-owner pattern), the same way
// internal/timer and internal/dma own their control register shadows.
type PPU struct {
	regs  *io.Regs
	sched interfaces.Scheduler
	irqs  interfaces.InterruptController
	dma   interfaces.DMAController

	vcount     uint16
	inHBlank   bool
	frameReady bool

	vblankCallback func(vcount uint16)
	hblankCallback func(vcount uint16)
}

func New(regs *io.Regs, sched interfaces.Scheduler, irqs interfaces.InterruptController, dma interfaces.DMAController) *PPU {
	return &PPU{regs: regs, sched: sched, irqs: irqs, dma: dma}
}

// SetVBlankCallback/SetHBlankCallback wire the host-facing egress hooks
// (spec.md §6's vblank_callback/hblank_callback).
func (p *PPU) SetVBlankCallback(cb func(vcount uint16)) { p.vblankCallback = cb }
func (p *PPU) SetHBlankCallback(cb func(vcount uint16)) { p.hblankCallback = cb }

// Reset restores scanline 0, H-draw, and schedules the first transition.
func (p *PPU) Reset() {
	p.vcount = 0
	p.inHBlank = false
	p.frameReady = false
	p.regs.RawWriteHalf(io.VCOUNT, 0)
	p.updateDispstat(p.regs.RawReadHalf(io.DISPSTAT) &^ (dispstatHBlank | dispstatVBlank))
	p.sched.Add(eventID, CyclesPerHDraw, p.onHDrawEnd)
}

func (p *PPU) updateDispstat(v uint16) {
	p.regs.RawWriteHalf(io.DISPSTAT, v)
}

func (p *PPU) checkVCountMatch() {
	dispstat := p.regs.RawReadHalf(io.DISPSTAT)
	target := uint16(dispstat >> 8)
	if p.vcount == target {
		dispstat |= dispstatVCountMatch
		if dispstat&dispstatVCountIRQ != 0 {
			p.irqs.Raise(interfaces.IRQVCount)
		}
	} else {
		dispstat &^= dispstatVCountMatch
	}
	p.updateDispstat(dispstat)
}

// onHDrawEnd fires at the H-draw/H-blank boundary of every scanline
// (spec.md §4's PPU cadence), including ones inside VBlank.
func (p *PPU) onHDrawEnd(late int64) {
	p.inHBlank = true
	dispstat := p.regs.RawReadHalf(io.DISPSTAT) | dispstatHBlank
	p.updateDispstat(dispstat)

	if p.vcount < VisibleScanlines {
		p.dma.OnHBlank()
		p.dma.OnVideoCapture()
	}
	if dispstat&dispstatHBlankIRQ != 0 {
		p.irqs.Raise(interfaces.IRQHBlank)
	}
	if p.hblankCallback != nil {
		p.hblankCallback(p.vcount)
	}

	p.sched.Add(eventID, CyclesPerHBlank-late, p.onHBlankEnd)
}

// onHBlankEnd fires at the H-blank/next-scanline boundary, advancing VCOUNT
// and handling the VBlank-entry and frame-wrap transitions.
func (p *PPU) onHBlankEnd(late int64) {
	p.inHBlank = false
	p.updateDispstat(p.regs.RawReadHalf(io.DISPSTAT) &^ dispstatHBlank)

	p.vcount = (p.vcount + 1) % ScanlinesPerFrame
	p.regs.RawWriteHalf(io.VCOUNT, p.vcount)
	p.checkVCountMatch()

	switch p.vcount {
	case VisibleScanlines:
		dispstat := p.regs.RawReadHalf(io.DISPSTAT) | dispstatVBlank
		p.updateDispstat(dispstat)
		p.dma.OnVBlank()
		if dispstat&dispstatVBlankIRQ != 0 {
			p.irqs.Raise(interfaces.IRQVBlank)
		}
		p.frameReady = true
		if p.vblankCallback != nil {
			p.vblankCallback(p.vcount)
		}
	case 0:
		p.updateDispstat(p.regs.RawReadHalf(io.DISPSTAT) &^ dispstatVBlank)
	}

	p.sched.Add(eventID, CyclesPerHDraw-late, p.onHDrawEnd)
}

// VCount returns the current scanline, mirroring the VCOUNT register.
func (p *PPU) VCount() uint16 { return p.vcount }

// InHBlank reports whether the current scanline is past H-draw.
func (p *PPU) InHBlank() bool { return p.inHBlank }

// IsFrameReady/ResetFrameReady let a host driver poll for a completed frame
// without subscribing to the vblank callback.
func (p *PPU) IsFrameReady() bool { return p.frameReady }
func (p *PPU) ResetFrameReady()   { p.frameReady = false }

// cyclesUntilNext captures how many cycles remain until the PPU's single
// recurring scheduler event (DISPSTAT's onHDrawEnd/onHBlankEnd alternation)
// fires. Serialized instead of the deadline itself, which is only meaningful
// relative to the scheduler's own restored Now (spec.md §6, §9).
func (p *PPU) cyclesUntilNext() int64 {
	deadline, ok := p.sched.Deadline(eventID)
	if !ok {
		return 0
	}
	remaining := deadline - p.sched.Now()
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (p *PPU) SaveState(w *state.Writer) {
	w.U16(p.vcount)
	w.Bool(p.inHBlank)
	w.Bool(p.frameReady)
	w.I64(p.cyclesUntilNext())
}

func (p *PPU) LoadState(r *state.Reader) (remaining int64) {
	p.vcount = r.U16()
	p.inHBlank = r.Bool()
	p.frameReady = r.Bool()
	return r.I64()
}

// Resync re-arms the scanline-transition event with the cycle count
// LoadState returned, resuming at the same point within H-draw/H-blank the
// snapshot was taken from (spec.md §9: subsystems re-derive their own
// pending events rather than have the scheduler replay serialized callbacks).
func (p *PPU) Resync(remaining int64) {
	if p.inHBlank {
		p.sched.Add(eventID, remaining, p.onHBlankEnd)
	} else {
		p.sched.Add(eventID, remaining, p.onHDrawEnd)
	}
}
