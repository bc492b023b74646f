// Package apu models only the two Direct Sound FIFO queues and their timer
// clocking (spec.md §2's APU row, with mixing/resampling an explicit
// non-goal). It exists so internal/dma's special-mode burst and
// internal/timer's overflow have somewhere real to drain/clock into, and so
// a host can receive raw PCM bytes through audio_callback (spec.md §6)
// rather than nothing at all.
package apu

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/state"
)

const fifoDepth = 32 // bytes, matching the GBA's FIFO_A/FIFO_B hardware size

type fifo struct {
	buf   [fifoDepth]int8
	count int
}

func (f *fifo) push32(value uint32) {
	for i := 0; i < 4; i++ {
		b := int8(byte(value >> (8 * i)))
		if f.count < fifoDepth {
			f.buf[f.count] = b
			f.count++
		}
	}
}

func (f *fifo) pop() (int8, bool) {
	if f.count == 0 {
		return 0, false
	}
	v := f.buf[0]
	copy(f.buf[:f.count-1], f.buf[1:f.count])
	f.count--
	return v, true
}

// Controller is the machine's APU: two FIFOs, each routed from timer 0 or
// timer 1 by SOUNDCNT_H (spec.md §4's audio-FIFO tick driver), refilled by
// DMA special-mode bursts once they run low.
type Controller struct {
	fifoA, fifoB fifo

	// timerRoute[i] is true if FIFO i is clocked by timer 1 rather than timer 0.
	timerRoute [2]bool

	dma interfaces.DMAController

	sampleCallback func(fifoA, fifoB int8)
}

func New(dma interfaces.DMAController) *Controller {
	return &Controller{dma: dma}
}

// SetSampleCallback wires the host-facing audio_callback egress (spec.md §6).
func (c *Controller) SetSampleCallback(cb func(fifoA, fifoB int8)) {
	c.sampleCallback = cb
}

// SetTimerRoute selects which timer (0 or 1) clocks fifoIndex (0=A, 1=B),
// mirroring SOUNDCNT_H bits 2 and 6.
func (c *Controller) SetTimerRoute(fifoIndex int, useTimer1 bool) {
	c.timerRoute[fifoIndex] = useTimer1
}

// OnFIFOWrite32 implements dma.AudioSink: a special-mode DMA burst writes a
// 32-bit word (4 samples) into the named FIFO (0=A, 1=B).
func (c *Controller) OnFIFOWrite32(fifoIndex int, value uint32) {
	switch fifoIndex {
	case 0:
		c.fifoA.push32(value)
	case 1:
		c.fifoB.push32(value)
	}
}

// OnTimerOverflow implements timer.AudioSink: the routed timer's overflow
// pops one sample from each FIFO it drives and requests a DMA refill once a
// FIFO has run dry.
func (c *Controller) OnTimerOverflow(channel int) {
	wantsTimer1 := channel == 1
	if channel != 0 && channel != 1 {
		return
	}

	var sampleA, sampleB int8
	if c.timerRoute[0] == wantsTimer1 {
		if v, ok := c.fifoA.pop(); ok {
			sampleA = v
		}
		if c.fifoA.count == 0 {
			c.dma.OnFIFOEmpty(0)
		}
	}
	if c.timerRoute[1] == wantsTimer1 {
		if v, ok := c.fifoB.pop(); ok {
			sampleB = v
		}
		if c.fifoB.count == 0 {
			c.dma.OnFIFOEmpty(1)
		}
	}

	if c.sampleCallback != nil {
		c.sampleCallback(sampleA, sampleB)
	}
}

func (f *fifo) saveState(w *state.Writer) {
	w.I32(int32(f.count))
	for _, b := range f.buf {
		w.U8(uint8(b))
	}
}

func (f *fifo) loadState(r *state.Reader) {
	f.count = int(r.I32())
	for i := range f.buf {
		f.buf[i] = int8(r.U8())
	}
}

// SaveState captures both FIFO queues and the SOUNDCNT_H timer routing
// (spec.md §6). Sample generation itself (SetSampleCallback's target) is a
// host-side concern, not core state.
func (c *Controller) SaveState(w *state.Writer) {
	c.fifoA.saveState(w)
	c.fifoB.saveState(w)
	w.Bool(c.timerRoute[0])
	w.Bool(c.timerRoute[1])
}

func (c *Controller) LoadState(r *state.Reader) {
	c.fifoA.loadState(r)
	c.fifoB.loadState(r)
	c.timerRoute[0] = r.Bool()
	c.timerRoute[1] = r.Bool()
}
