package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GoBA/internal/interfaces"
	"GoBA/internal/interrupt"
)

func TestSetKeysClearsBitOnPress(t *testing.T) {
	c := New(interrupt.New())
	c.SetKeys(A, true)
	assert.EqualValues(t, 0x3FF&^A, c.ReadKeyInput())
	c.SetKeys(A, false)
	assert.EqualValues(t, 0x3FF, c.ReadKeyInput())
}

func TestKeypadIRQOrMode(t *testing.T) {
	irqs := interrupt.New()
	irqs.WriteIE(interfaces.IRQKeypad)
	c := New(irqs)
	c.WriteKeyCnt(uint16(1<<14) | A | B) // IRQ enabled, OR mode, select A|B

	c.SetKeys(A, true)
	assert.True(t, irqs.Pending())
}

func TestKeypadIRQAndModeRequiresAllSelected(t *testing.T) {
	irqs := interrupt.New()
	irqs.WriteIE(interfaces.IRQKeypad)
	c := New(irqs)
	c.WriteKeyCnt(uint16(1<<14)|uint16(1<<15)|A|B) // AND mode, select A&B

	c.SetKeys(A, true)
	assert.False(t, irqs.Pending())

	c.SetKeys(B, true)
	assert.True(t, irqs.Pending())
}
