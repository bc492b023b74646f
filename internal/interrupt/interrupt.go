// Package interrupt implements the InterruptController (spec.md §4.7): IE/IF
// aggregation with write-1-to-clear IF semantics, and the IME master enable.
package interrupt

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/state"
)

// Controller owns IE, IF and IME. The CPU polls ShouldTakeIRQ at each fetch
// boundary and Pending while halted; neither call mutates state.
type Controller struct {
	ie  uint16
	iff uint16
	ime bool
}

var _ interfaces.InterruptController = (*Controller)(nil)

func New() *Controller {
	return &Controller{}
}

func (c *Controller) Reset() {
	c.ie, c.iff, c.ime = 0, 0, false
}

// Raise sets the given IF bit(s); called by DMA/timer/PPU/serial/joypad on
// their respective trigger condition.
func (c *Controller) Raise(bit uint16) {
	c.iff |= bit
}

// Pending reports IE & IF != 0, independent of IME — this is the halt-wake
// condition per spec.md §4.4/§4.7.
func (c *Controller) Pending() bool {
	return c.ie&c.iff != 0
}

// ShouldTakeIRQ reports whether the CPU should take the IRQ exception at the
// next fetch boundary. The CPSR.I check is the CPU's own responsibility since
// only it holds CPSR; this only covers the controller's half of the
// condition.
func (c *Controller) ShouldTakeIRQ() bool {
	return c.Pending() && c.ime
}

func (c *Controller) ReadIE() uint16 { return c.ie }

func (c *Controller) WriteIE(mask uint16) { c.ie = mask & 0x3FFF }

func (c *Controller) ReadIF() uint16 { return c.iff }

// WriteIF clears exactly the bits the host/CPU writes as 1, per spec.md §4.2
// IF's "write-1-to-clear" rule.
func (c *Controller) WriteIF(mask uint16) {
	c.iff &^= mask
}

func (c *Controller) ReadIME() uint32 {
	if c.ime {
		return 1
	}
	return 0
}

func (c *Controller) WriteIME(v uint32) {
	c.ime = v&1 != 0
}

func (c *Controller) SaveState(w *state.Writer) {
	w.U16(c.ie)
	w.U16(c.iff)
	w.Bool(c.ime)
}

func (c *Controller) LoadState(r *state.Reader) {
	c.ie = r.U16()
	c.iff = r.U16()
	c.ime = r.Bool()
}
