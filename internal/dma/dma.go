// Package dma implements the 4-channel DMA engine (spec.md §4.6), grounded
// directly on _examples/original_source/src/core/dma.cpp's channel layout,
// address-mask tables and on_cnt_write/on_hblank/on_vblank/on_fifo_empty
// dispatch.
package dma

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/io"
	"GoBA/internal/scheduler"
	"GoBA/internal/state"
)

const numChannels = 4

const eventBase = scheduler.EventID(0x2000)

type Mode uint8

const (
	ModeImmediate Mode = 0b00
	ModeVBlank    Mode = 0b01
	ModeHBlank    Mode = 0b10
	ModeSpecial   Mode = 0b11
)

type IncrementType uint8

const (
	IncInc     IncrementType = 0b00
	IncDec     IncrementType = 0b01
	IncFixed   IncrementType = 0b10
	IncSpecial IncrementType = 0b11 // src: invalid; dst: reload after burst
)

type SizeType uint8

const (
	SizeHalf SizeType = 0
	SizeWord SizeType = 1
)

// internalMemoryRange masks an address down to the 0x00-0x07 region span;
// anyMemoryRange allows the full 28-bit address space including backup.
const (
	internalMemoryRange = 0x07FFFFFF
	anyMemoryRange      = 0x0FFFFFFF
)

var srcMask = [numChannels]uint32{internalMemoryRange, anyMemoryRange, anyMemoryRange, anyMemoryRange}
var dstMask = [numChannels]uint32{internalMemoryRange, internalMemoryRange, internalMemoryRange, anyMemoryRange}

var irqBits = [numChannels]uint16{
	interfaces.IRQDMA0, interfaces.IRQDMA1, interfaces.IRQDMA2, interfaces.IRQDMA3,
}

type channel struct {
	srcAddr, dstAddr uint32
	length           uint32 // remaining units in the in-flight burst
	originalLength   uint32
	originalDst      uint32

	srcIncrement int32
	dstIncrement int32

	mode                     Mode
	srcIncType, dstIncType   IncrementType
	sizeType                 SizeType
	repeat, irq, enabled     bool
}

// AudioSink receives each word drained by a special-mode FIFO burst
// (spec.md §4.6's channel 1/2 special mode).
type AudioSink interface {
	OnFIFOWrite32(fifo int, value uint32)
}

type regOffsets struct {
	sad, dad, cntL, cntH uint32
}

var channelOffsets = [numChannels]regOffsets{
	{io.DMA0SAD, io.DMA0DAD, io.DMA0CNT_L, io.DMA0CNT_H},
	{io.DMA1SAD, io.DMA1DAD, io.DMA1CNT_L, io.DMA1CNT_H},
	{io.DMA2SAD, io.DMA2DAD, io.DMA2CNT_L, io.DMA2CNT_H},
	{io.DMA3SAD, io.DMA3DAD, io.DMA3CNT_L, io.DMA3CNT_H},
}

// Controller owns all four DMA channels.
type Controller struct {
	ch   [numChannels]channel
	regs *io.Regs
	bus  interfaces.BusInterface
	sched interfaces.Scheduler
	irqs interfaces.InterruptController
	apu  AudioSink

	backupType      func() bool // reports whether backup is EEPROM; avoids importing internal/backup
	eepromWidthHint int
}

func New(regs *io.Regs, bus interfaces.BusInterface, sched interfaces.Scheduler, irqs interfaces.InterruptController, apu AudioSink, isEEPROM func() bool) *Controller {
	return &Controller{regs: regs, bus: bus, sched: sched, irqs: irqs, apu: apu, backupType: isEEPROM}
}

// SetAudioSink wires the APU after both it and the DMA controller exist —
// apu.New takes this Controller as its own interfaces.DMAController
// argument, so the two can't be constructed in either strict order without
// a late-bound setter on one side.
func (c *Controller) SetAudioSink(apu AudioSink) { c.apu = apu }

func (c *Controller) Reset() {
	for i := range c.ch {
		c.ch[i] = channel{}
	}
}

// EEPROMWidthHint returns the EEPROM address width in bits (6 or 14) that
// the length of the most recent channel-3 transfer implies, used by
// internal/backup's EEPROM state machine (spec.md §4.8, SPEC_FULL.md §C.3).
func (c *Controller) EEPROMWidthHint() int {
	return c.eepromWidthHint
}

// OnCntWrite handles a write to channel i's DMAiCNT_H, mirroring
// dma.cpp's on_cnt_write.
func (c *Controller) OnCntWrite(i int) {
	off := channelOffsets[i]
	cntH := c.regs.RawReadHalf(off.cntH)
	cntL := c.regs.RawReadHalf(off.cntL)

	dstInc := IncrementType((cntH >> 5) & 0b11)
	srcInc := IncrementType((cntH >> 7) & 0b11)
	repeat := cntH&(1<<9) != 0
	size := SizeType((cntH >> 10) & 1)
	mode := Mode((cntH >> 12) & 0b11)
	irqEnable := cntH&(1<<14) != 0
	enable := cntH&(1<<15) != 0

	ch := &c.ch[i]

	if !enable {
		ch.enabled = false
		return
	}

	ch.dstIncType = dstInc
	ch.srcIncType = srcInc
	ch.repeat = repeat
	ch.sizeType = size
	ch.mode = mode
	ch.irq = irqEnable

	if enable && !ch.enabled {
		ch.srcAddr = c.regs.RawReadWord(off.sad)
		ch.dstAddr = c.regs.RawReadWord(off.dad)
		ch.length = uint32(cntL)
		if ch.length == 0 {
			if i == 3 {
				ch.length = 0x10000
			} else {
				ch.length = 0x4000
			}
		}
		ch.originalLength = ch.length
		ch.originalDst = ch.dstAddr
	}
	ch.enabled = true

	// Special mode means two different things depending on channel: 1/2 drain
	// a sound FIFO (fixed 4-word burst, destination pinned at the FIFO
	// address); 3 is video capture, which behaves like a normal transfer
	// (its own programmed length, normal destination increment) except for
	// what retriggers it (spec.md §4.6).
	isFIFOSpecial := ch.mode == ModeSpecial && i != 3
	if isFIFOSpecial {
		ch.length = 4
		ch.sizeType = SizeWord
		ch.dstIncType = IncSpecial
		ch.dstIncrement = 0
	}

	switch ch.sizeType {
	case SizeHalf:
		ch.srcIncrement, ch.dstIncrement = 2, 2
	case SizeWord:
		ch.srcIncrement, ch.dstIncrement = 4, 4
	}
	applyIncrementSign(ch.srcIncType, &ch.srcIncrement)
	if !isFIFOSpecial {
		applyIncrementSign(ch.dstIncType, &ch.dstIncrement)
	}

	if i == 3 && ch.dstAddr >= 0x0D000000 && ch.dstAddr <= 0x0DFFFFFF && c.backupType != nil && c.backupType() {
		if cntL > 9 {
			c.eepromWidthHint = 14
		} else {
			c.eepromWidthHint = 6
		}
	}

	if ch.mode == ModeImmediate {
		c.sched.Add(eventBase+scheduler.EventID(i), 0, func(late int64) {
			if ch.enabled && ch.mode == ModeImmediate {
				c.run(i, false)
			}
		})
	}
}

func applyIncrementSign(t IncrementType, inc *int32) {
	switch t {
	case IncInc, IncSpecial:
	case IncDec:
		*inc = -*inc
	case IncFixed:
		*inc = 0
	}
}

// OnHBlank fires every enabled hblank-triggered channel (spec.md §4.6).
func (c *Controller) OnHBlank() {
	for i := 0; i < numChannels; i++ {
		if c.ch[i].enabled && c.ch[i].mode == ModeHBlank {
			c.run(i, false)
		}
	}
}

// OnVBlank fires every enabled vblank-triggered channel.
func (c *Controller) OnVBlank() {
	for i := 0; i < numChannels; i++ {
		if c.ch[i].enabled && c.ch[i].mode == ModeVBlank {
			c.run(i, false)
		}
	}
}

// OnVideoCapture fires channel 3's video-capture trigger: armed in special
// mode, channel 3 (unlike channels 1/2's FIFO-drain special mode) is
// retriggered once per visible scanline rather than by a FIFO running dry
// (spec.md §4.6's trigger table; GBATEK's "DMA3 Video Capture Special Mode").
func (c *Controller) OnVideoCapture() {
	ch := &c.ch[3]
	if ch.enabled && ch.mode == ModeSpecial {
		c.run(3, true)
	}
}

// OnFIFOEmpty fires the channel feeding the given FIFO (1=A, 2=B per
// dma.cpp's fifo+1 indexing) in special/forced-word-burst mode.
func (c *Controller) OnFIFOEmpty(fifo int) {
	channelNum := fifo + 1
	if channelNum < 1 || channelNum >= numChannels {
		return
	}
	ch := &c.ch[channelNum]
	if ch.enabled && ch.mode == ModeSpecial {
		c.run(channelNum, true)
	}
}

// run executes one DMA burst. special forces the 4-word FIFO-drain path on
// channels 1/2 (spec.md §4.6, SPEC_FULL.md §C.2) and the one-word video
// capture on channel 3; otherwise it transfers the full programmed length
// at the configured width.
func (c *Controller) run(i int, special bool) {
	ch := &c.ch[i]
	dst := ch.dstAddr
	finished := true

	if special && i != 3 {
		ch.srcAddr &= ^uint32(3)
		for n := 0; n < 4; n++ {
			ch.srcAddr &= srcMask[i]
			ch.dstAddr &= dstMask[i]
			value := c.bus.Read32(ch.srcAddr)
			c.sched.Advance(1)
			if c.apu != nil {
				c.apu.OnFIFOWrite32(i-1, value)
			}
			ch.srcAddr = uint32(int64(ch.srcAddr) + int64(ch.srcIncrement))
		}
	} else if special {
		// Channel 3 video capture: one word per scanline, written straight
		// to the (normally incrementing) destination like a regular transfer.
		// The programmed length counts scanlines, so a single call only ever
		// consumes one unit of it; the channel keeps rearming every scanline
		// (spec.md §4.6) until the count reaches zero.
		ch.srcAddr &= ^uint32(3)
		ch.dstAddr &= ^uint32(3)
		ch.srcAddr &= srcMask[i]
		ch.dstAddr &= dstMask[i]
		c.bus.Write32(ch.dstAddr, c.bus.Read32(ch.srcAddr))
		ch.srcAddr = uint32(int64(ch.srcAddr) + int64(ch.srcIncrement))
		ch.dstAddr = uint32(int64(ch.dstAddr) + int64(ch.dstIncrement))
		if ch.length > 0 {
			ch.length--
		}
		finished = ch.length == 0
	} else {
		switch ch.sizeType {
		case SizeHalf:
			ch.srcAddr &= ^uint32(1)
			ch.dstAddr &= ^uint32(1)
			for ; ch.length > 0; ch.length-- {
				ch.srcAddr &= srcMask[i]
				ch.dstAddr &= dstMask[i]
				c.bus.Write16(ch.dstAddr, c.bus.Read16(ch.srcAddr))
				ch.srcAddr = uint32(int64(ch.srcAddr) + int64(ch.srcIncrement))
				ch.dstAddr = uint32(int64(ch.dstAddr) + int64(ch.dstIncrement))
			}
		case SizeWord:
			ch.srcAddr &= ^uint32(3)
			ch.dstAddr &= ^uint32(3)
			for ; ch.length > 0; ch.length-- {
				ch.srcAddr &= srcMask[i]
				ch.dstAddr &= dstMask[i]
				c.bus.Write32(ch.dstAddr, c.bus.Read32(ch.srcAddr))
				ch.srcAddr = uint32(int64(ch.srcAddr) + int64(ch.srcIncrement))
				ch.dstAddr = uint32(int64(ch.dstAddr) + int64(ch.dstIncrement))
			}
		}
	}

	if !finished {
		return
	}

	if ch.irq {
		c.irqs.Raise(irqBits[i])
	}

	if ch.repeat && ch.mode != ModeImmediate {
		ch.length = ch.originalLength
		if ch.dstIncType == IncSpecial {
			ch.dstAddr = dst
		}
	} else {
		ch.enabled = false
		off := channelOffsets[i]
		cntH := c.regs.RawReadHalf(off.cntH)
		c.regs.RawWriteHalf(off.cntH, cntH&^(1<<15))
	}
}

// SaveState captures every channel's in-flight address/length/mode state
// (spec.md §6's dma[4] section). Immediate-mode channels are always disabled
// again by the time run(cycles) returns control to the host (their scheduled
// burst has delay 0), so no pending-event re-arming is needed on load, unlike
// internal/timer and internal/ppu.
func (c *Controller) SaveState(w *state.Writer) {
	for i := range c.ch {
		ch := &c.ch[i]
		w.U32(ch.srcAddr)
		w.U32(ch.dstAddr)
		w.U32(ch.length)
		w.U32(ch.originalLength)
		w.U32(ch.originalDst)
		w.I32(ch.srcIncrement)
		w.I32(ch.dstIncrement)
		w.U8(uint8(ch.mode))
		w.U8(uint8(ch.srcIncType))
		w.U8(uint8(ch.dstIncType))
		w.U8(uint8(ch.sizeType))
		w.Bool(ch.repeat)
		w.Bool(ch.irq)
		w.Bool(ch.enabled)
	}
	w.I32(int32(c.eepromWidthHint))
}

func (c *Controller) LoadState(r *state.Reader) {
	for i := range c.ch {
		ch := &c.ch[i]
		ch.srcAddr = r.U32()
		ch.dstAddr = r.U32()
		ch.length = r.U32()
		ch.originalLength = r.U32()
		ch.originalDst = r.U32()
		ch.srcIncrement = r.I32()
		ch.dstIncrement = r.I32()
		ch.mode = Mode(r.U8())
		ch.srcIncType = IncrementType(r.U8())
		ch.dstIncType = IncrementType(r.U8())
		ch.sizeType = SizeType(r.U8())
		ch.repeat = r.Bool()
		ch.irq = r.Bool()
		ch.enabled = r.Bool()
	}
	c.eepromWidthHint = int(r.I32())
}
