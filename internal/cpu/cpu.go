// Package cpu implements the ARM7TDMI core (spec.md §4.4): register bank,
// barrel shifter, ARM and Thumb decode/execute, and exception entry.
package cpu

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/memory"
)

// HaltSource is the CPU's view of the bus's HALTCNT latch (spec.md §4.4):
// Step must stop advancing PC while halted, and resume once an interrupt
// becomes pending.
type HaltSource interface {
	HaltRequested() bool
	ClearHaltRequested()
}

// WaitloopSink lets Step report every taken backward Thumb conditional
// branch to the idle-loop detector and ask whether it's safe to fast-forward
// instead of single-stepping (spec.md §4.9).
type WaitloopSink interface {
	OnThumbLoop(currentPC, newJumpPC uint32, regs [15]uint32)
	IsInWaitloop() bool
}

// CPU drives the fetch-decode-execute loop against a bus and the subset of
// interrupt-controller state it needs to know whether to take an IRQ.
type CPU struct {
	registers *Registers
	bus       interfaces.BusInterface
	irqs      interfaces.InterruptController
	halt      HaltSource
	waitloop  WaitloopSink
}

func NewCPU(bus interfaces.BusInterface, irqs interfaces.InterruptController, halt HaltSource) *CPU {
	c := &CPU{bus: bus, irqs: irqs, halt: halt}
	c.Reset()
	return c
}

// SetWaitloop wires the idle-loop detector in after construction, since it
// is optional (spec.md §9 calls it "optional-but-recommended").
func (c *CPU) SetWaitloop(w WaitloopSink) { c.waitloop = w }

func (c *CPU) Registers() interfaces.RegistersInterface { return c.registers }
func (c *CPU) Bus() interfaces.BusInterface              { return c.bus }

// Reset puts the CPU at the BIOS entry point in Supervisor mode with both
// interrupt sources masked, mirroring a real post-power-on ARM7TDMI.
func (c *CPU) Reset() {
	c.registers = NewRegisters()
	c.registers.PC = memory.BIOS_START
	c.registers.SetMode(SVCMode)
	c.registers.SetIRQDisabled(true)
	c.registers.SetFIQDisabled(true)
}

// Step executes exactly one instruction, or takes a pending interrupt in
// its place (spec.md §8's "IRQ taken iff IE&IF!=0 && IME && !CPSR.I at the
// next fetch boundary" — checked here, right before every fetch).
func (c *CPU) Step() {
	if c.halt != nil && c.halt.HaltRequested() {
		if c.irqs != nil && c.irqs.Pending() {
			c.halt.ClearHaltRequested()
		} else {
			return
		}
	}

	if c.irqs != nil && c.irqs.ShouldTakeIRQ() && !c.registers.IsIRQDisabled() {
		c.enterException(excIRQ)
		return
	}

	pc := c.registers.PC
	if c.registers.IsThumb() {
		instr := c.bus.Read16(pc)
		c.registers.PC = pc + 2
		c.executeThumb(instr, pc)
	} else {
		instr := c.bus.Read32(pc)
		c.registers.PC = pc + 4
		c.executeArm(instr, pc)
	}
}

// Execute runs a single already-fetched instruction without advancing PC or
// checking for a pending interrupt — CPUInterface's lower-level entry point,
// used by tests that want to drive one opcode in isolation.
func (c *CPU) Execute(instruction uint32) error {
	pc := c.registers.PC
	if c.registers.IsThumb() {
		c.executeThumb(uint16(instruction), pc)
	} else {
		c.executeArm(instruction, pc)
	}
	return nil
}

// readOperand reads a general register the way an instruction sees it
// mid-execution: R15 reads as the 2-stage-ahead prefetch value (PC+8 in ARM
// state, PC+4 in Thumb state), not the raw PC field Step already advanced
// past the current instruction for the next fetch.
func (c *CPU) readOperand(reg uint8) uint32 {
	if reg == 15 {
		if c.registers.IsThumb() {
			return c.registers.PC + 2
		}
		return c.registers.PC + 4
	}
	return c.registers.GetReg(reg)
}

// setLogicalFlags updates N/Z/C after a logical data-processing op (AND,
// EOR, TST, TEQ, ORR, MOV, BIC, MVN); V is left untouched per the ISA.
func (c *CPU) setLogicalFlags(result uint32, carryOut bool) {
	r := c.registers
	r.SetFlagN(result&0x80000000 != 0)
	r.SetFlagZ(result == 0)
	r.SetFlagC(carryOut)
}

// setArithmeticFlags updates N/Z/C/V after an arithmetic data-processing op;
// carryOut and overflow are supplied by the caller since they depend on the
// specific operation (add-like vs subtract-like), not just the result.
func (c *CPU) setArithmeticFlags(result uint32, carryOut, overflow bool) {
	r := c.registers
	r.SetFlagN(result&0x80000000 != 0)
	r.SetFlagZ(result == 0)
	r.SetFlagC(carryOut)
	r.SetFlagV(overflow)
}

func addOverflow(a, b, result uint32) bool {
	return (a^result)&(b^result)&0x80000000 != 0
}

func subOverflow(a, b, result uint32) bool {
	return (a^b)&(a^result)&0x80000000 != 0
}
