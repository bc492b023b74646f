package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GoBA/internal/state"
)

// TestSaveLoadStateRoundTrip exercises spec.md §8's "load_state(save_state())
// is the identity on all observable state" property for every banked
// register, not just the current-mode view GetReg/SetReg expose.
func TestSaveLoadStateRoundTrip(t *testing.T) {
	c := NewCPU(nil, nil, nil)

	c.registers.SetMode(FIQMode)
	c.registers.R8_fiq, c.registers.R9_fiq = 0x11111111, 0x22222222
	c.registers.SP_fiq, c.registers.LR_fiq = 0x33333333, 0x44444444
	c.registers.SPSR_fiq = 0xAAAAAAAA

	c.registers.SetMode(IRQMode)
	c.registers.SP_irq, c.registers.LR_irq = 0x55555555, 0x66666666
	c.registers.SPSR_irq = 0xBBBBBBBB

	c.registers.SetMode(SVCMode)
	c.registers.SP_svc, c.registers.LR_svc = 0x77777777, 0x88888888
	c.registers.SPSR_svc = 0xCCCCCCCC
	c.registers.PC = 0x08000100
	c.registers.R[3] = 0xDEADBEEF

	w := state.NewWriter()
	c.SaveState(w)
	snapshot := w.Finish()

	// Mutate everything the snapshot covers so LoadState has something to
	// actually restore rather than trivially matching zero values.
	c.registers.SetMode(FIQMode)
	c.registers.R8_fiq = 0
	c.registers.SetMode(SVCMode)
	c.registers.PC = 0
	c.registers.R[3] = 0
	c.registers.SPSR_svc = 0

	c.LoadState(state.NewReader(snapshot))

	assert.EqualValues(t, uint32(0x08000100), c.registers.PC)
	assert.EqualValues(t, uint32(0xDEADBEEF), c.registers.R[3])
	assert.EqualValues(t, uint32(0xCCCCCCCC), c.registers.SPSR_svc)
	assert.EqualValues(t, uint32(0x77777777), c.registers.SP_svc)

	c.registers.SetMode(FIQMode)
	assert.EqualValues(t, uint32(0x11111111), c.registers.R8_fiq)
	assert.EqualValues(t, uint32(0xAAAAAAAA), c.registers.SPSR_fiq)

	c.registers.SetMode(IRQMode)
	assert.EqualValues(t, uint32(0x55555555), c.registers.SP_irq)
	assert.EqualValues(t, uint32(0xBBBBBBBB), c.registers.SPSR_irq)
}

// TestIRQRequiresCPSRIClear pins the fix to Step's IRQ-take condition: a
// pending, enabled IRQ must still wait for CPSR.I to clear before being
// taken (spec.md §8's "IRQ taken iff IE&IF!=0 && IME && !CPSR.I").
func TestIRQRequiresCPSRIClear(t *testing.T) {
	irqs := &alwaysIRQ{}
	c := NewCPU(&nopBus{}, irqs, nil)
	c.registers.SetIRQDisabled(true)
	c.registers.PC = 0x08000000

	c.Step()

	assert.EqualValues(t, SVCMode, c.registers.GetMode(), "must not have entered IRQ exception while CPSR.I is set")
}

type alwaysIRQ struct{}

func (a *alwaysIRQ) Raise(bit uint16)    {}
func (a *alwaysIRQ) Pending() bool       { return true }
func (a *alwaysIRQ) ShouldTakeIRQ() bool { return true }
func (a *alwaysIRQ) ReadIE() uint16      { return 0xFFFF }
func (a *alwaysIRQ) WriteIE(uint16)      {}
func (a *alwaysIRQ) ReadIF() uint16      { return 0xFFFF }
func (a *alwaysIRQ) WriteIF(uint16)      {}
func (a *alwaysIRQ) ReadIME() uint32     { return 1 }
func (a *alwaysIRQ) WriteIME(uint32)     {}

type nopBus struct{}

func (n *nopBus) Read8(uint32) uint8          { return 0 }
func (n *nopBus) Write8(uint32, uint8)        {}
func (n *nopBus) Read16(uint32) uint16        { return 0 } // 0 decodes as Thumb LSL r0, r0, #0, harmless to executeThumb
func (n *nopBus) Write16(uint32, uint16)      {}
func (n *nopBus) Read32(uint32) uint32        { return 0 }
func (n *nopBus) Write32(uint32, uint32)      {}
func (n *nopBus) Tick(cycles int)             {}
