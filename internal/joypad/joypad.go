// Package joypad implements REG_KEYINPUT/REG_KEYCNT and the keypad IRQ
// condition (spec.md §6's set_keys). Grounded on the teacher's bus.go field
// name (`Keypad`), which named the component but never actually built it.
package joypad

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/state"
)

// Key bit positions within KEYINPUT/KEYCNT, active-low on KEYINPUT.
const (
	A = uint16(1 << iota)
	B
	Select
	Start
	Right
	Left
	Up
	Down
	R
	L
)

const (
	keycntIRQEnable = 1 << 14
	keycntIRQAndMode = 1 << 15
)

// Controller tracks the currently-pressed key mask and fires the keypad IRQ
// per KEYCNT's selected-key AND/OR condition (spec.md §6).
type Controller struct {
	keyinput uint16 // active-low: 1 = released
	keycnt   uint16

	irqs interfaces.InterruptController
}

func New(irqs interfaces.InterruptController) *Controller {
	return &Controller{keyinput: 0x3FF, irqs: irqs}
}

func (c *Controller) Reset() {
	c.keyinput = 0x3FF
	c.keycnt = 0
}

// SetKeys updates KEYINPUT for the bits in mask (down=true presses them,
// false releases them), then evaluates the keypad IRQ condition.
func (c *Controller) SetKeys(mask uint16, down bool) {
	if down {
		c.keyinput &^= mask
	} else {
		c.keyinput |= mask
	}
	c.checkIRQ()
}

func (c *Controller) checkIRQ() {
	if c.keycnt&keycntIRQEnable == 0 {
		return
	}
	selected := c.keycnt & 0x3FF
	pressed := (^c.keyinput) & 0x3FF
	var fire bool
	if c.keycnt&keycntIRQAndMode != 0 {
		fire = pressed&selected == selected && selected != 0
	} else {
		fire = pressed&selected != 0
	}
	if fire {
		c.irqs.Raise(interfaces.IRQKeypad)
	}
}

func (c *Controller) ReadKeyInput() uint16 { return c.keyinput }
func (c *Controller) ReadKeyCnt() uint16   { return c.keycnt }

func (c *Controller) WriteKeyCnt(value uint16) {
	c.keycnt = value
	c.checkIRQ()
}

func (c *Controller) SaveState(w *state.Writer) {
	w.U16(c.keyinput)
	w.U16(c.keycnt)
}

func (c *Controller) LoadState(r *state.Reader) {
	c.keyinput = r.U16()
	c.keycnt = r.U16()
}
