// Package timer implements the 4-channel timer chain (spec.md §4.5): each
// channel either free-runs off a prescaled clock or cascades from the
// channel below it, scheduling its own overflow as a scheduler event rather
// than being polled every CPU cycle.
package timer

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/io"
	"GoBA/internal/scheduler"
	"GoBA/internal/state"
)

const numChannels = 4

// eventBase offsets this package's scheduler event ids away from other
// subsystems' ranges (DMA uses 0x2000+, PPU 0x3000).
const eventBase = scheduler.EventID(0x1000)

var prescalers = [4]int64{1, 64, 256, 1024}

type channel struct {
	counter  uint16
	reload   uint16
	prescale uint8 // index into prescalers
	cascade  bool
	irq      bool
	enabled  bool

	lastLatch int64 // scheduler.Now() at the last point `counter` was authoritative
}

// Controller owns all four channels and the shared I/O register file they
// read their control bits from.
type Controller struct {
	ch   [numChannels]channel
	regs *io.Regs
	sched interfaces.Scheduler
	irqs interfaces.InterruptController
	apu  AudioSink
}

// AudioSink is the narrow slice of the APU that cares about timer overflow
// (the audio-FIFO-drain clock, spec.md §4.5). Modeled as an interface so
// internal/timer never imports internal/apu directly.
type AudioSink interface {
	OnTimerOverflow(channel int)
}

func New(regs *io.Regs, sched interfaces.Scheduler, irqs interfaces.InterruptController, apu AudioSink) *Controller {
	return &Controller{regs: regs, sched: sched, irqs: irqs, apu: apu}
}

// SetAudioSink lets the APU be wired in after construction, since apu.New
// itself depends on the DMA controller and timer/DMA both accept the APU
// as an optional sink — breaking what would otherwise be a construction
// cycle between internal/apu, internal/dma and internal/timer.
func (c *Controller) SetAudioSink(apu AudioSink) { c.apu = apu }

func (c *Controller) Reset() {
	for i := range c.ch {
		c.ch[i] = channel{}
		c.sched.Remove(eventBase + scheduler.EventID(i))
	}
}

var irqBits = [numChannels]uint16{
	interfaces.IRQTimer0, interfaces.IRQTimer1, interfaces.IRQTimer2, interfaces.IRQTimer3,
}

// interpolated returns the channel's counter value as of right now, without
// mutating state — used both by ReadCounter and internally before a
// enable-falling-edge freeze.
func (c *Controller) interpolated(i int) uint16 {
	ch := &c.ch[i]
	if !ch.enabled || ch.cascade {
		return ch.counter
	}
	elapsed := c.sched.Now() - ch.lastLatch
	delta := elapsed / prescalers[ch.prescale]
	return uint16(uint32(ch.counter) + uint32(delta))
}

// ReadCounter returns the live, interpolated counter value (spec.md §4.5
// "Read of counter: return the interpolated value").
func (c *Controller) ReadCounter(i int) uint16 {
	return c.interpolated(i)
}

// OnCntWrite handles a write to channel i's control register (TMxCNT_H),
// detecting the enable rising/falling edge per spec.md §4.5.
func (c *Controller) OnCntWrite(i int) {
	ch := &c.ch[i]
	cntH := c.regs.RawReadHalf(uint32(io.TM0CNT_H + i*io.TimerChannelStride))
	wasEnabled := ch.enabled

	ch.prescale = uint8(cntH & 0b11)
	ch.cascade = cntH&(1<<2) != 0 && i != 0 // channel 0 has no "below" channel
	ch.irq = cntH&(1<<6) != 0
	nowEnabled := cntH&(1<<7) != 0

	switch {
	case nowEnabled && !wasEnabled:
		ch.reload = c.regs.RawReadHalf(uint32(io.TM0CNT_L + i*io.TimerChannelStride))
		ch.counter = ch.reload
		ch.lastLatch = c.sched.Now()
		ch.enabled = true
		if !ch.cascade {
			c.scheduleOverflow(i)
		}
	case !nowEnabled && wasEnabled:
		ch.counter = c.interpolated(i)
		ch.enabled = false
		c.sched.Remove(eventBase + scheduler.EventID(i))
	default:
		ch.enabled = nowEnabled
	}
}

func (c *Controller) scheduleOverflow(i int) {
	ch := &c.ch[i]
	delay := (int64(0x10000) - int64(ch.counter)) * prescalers[ch.prescale]
	c.sched.Add(eventBase+scheduler.EventID(i), delay, func(late int64) {
		c.overflow(i, late)
	})
}

// overflow implements spec.md §4.5's overflow transition, recursing into the
// next channel when it is configured to cascade.
func (c *Controller) overflow(i int, late int64) {
	ch := &c.ch[i]
	ch.counter = ch.reload
	ch.lastLatch = c.sched.Now() - late

	if ch.irq {
		c.irqs.Raise(irqBits[i])
	}
	if c.apu != nil && i < 2 {
		c.apu.OnTimerOverflow(i)
	}
	if i+1 < numChannels && c.ch[i+1].enabled && c.ch[i+1].cascade {
		c.cascadeIncrement(i + 1)
	}
	if !ch.cascade {
		// The next period starts at the overdue deadline, not at Now, so a
		// late callback does not push every later overflow back.
		delay := (int64(0x10000) - int64(ch.counter)) * prescalers[ch.prescale]
		c.sched.Add(eventBase+scheduler.EventID(i), delay-late, func(late int64) {
			c.overflow(i, late)
		})
	}
}

// cascadeIncrement bumps a cascading channel by one tick, handling its own
// overflow (and further cascading) recursively, per spec.md §4.5.
func (c *Controller) cascadeIncrement(i int) {
	ch := &c.ch[i]
	if ch.counter == 0xFFFF {
		c.overflow(i, 0)
		return
	}
	ch.counter++
}

// SaveState freezes each channel's counter to its value as of right now
// (via interpolated, the same freeze ReadCounter and the enable-falling-edge
// path already use) so LoadState/Resync can re-arm a pending overflow purely
// from restored fields, without needing a separately-captured cycle delta.
func (c *Controller) SaveState(w *state.Writer) {
	for i := range c.ch {
		ch := &c.ch[i]
		w.U16(c.interpolated(i))
		w.U16(ch.reload)
		w.U8(ch.prescale)
		w.Bool(ch.cascade)
		w.Bool(ch.irq)
		w.Bool(ch.enabled)
	}
}

func (c *Controller) LoadState(r *state.Reader) {
	for i := range c.ch {
		ch := &c.ch[i]
		ch.counter = r.U16()
		ch.reload = r.U16()
		ch.prescale = r.U8()
		ch.cascade = r.Bool()
		ch.irq = r.Bool()
		ch.enabled = r.Bool()
		ch.lastLatch = c.sched.Now()
	}
}

// Resync re-arms the scheduler overflow event for every enabled, non-cascade
// channel. Called once after LoadState has restored every channel's counter
// and the scheduler's Now (spec.md §9: no serialized callbacks, only
// restored data re-deriving its own pending events).
func (c *Controller) Resync() {
	for i := range c.ch {
		ch := &c.ch[i]
		if ch.enabled && !ch.cascade {
			c.scheduleOverflow(i)
		}
	}
}
