package cpu

// Exception vector addresses (ARM7TDMI, fixed at the low end of BIOS).
const (
	vectorReset          = 0x00000000
	vectorUndefined      = 0x00000004
	vectorSWI            = 0x00000008
	vectorPrefetchAbort  = 0x0000000C
	vectorDataAbort      = 0x00000010
	vectorIRQ            = 0x00000018
	vectorFIQ            = 0x0000001C
)

type exception int

const (
	excReset exception = iota
	excUndefined
	excSWI
	excPrefetchAbort
	excDataAbort
	excIRQ
	excFIQ
)

// enterException performs the mode switch, SPSR save, link-register save and
// vector jump common to every ARM7TDMI exception entry (spec.md §7's "route
// through the guest ARM exception vectors").
//
// r.PC at call time is always the address of the instruction that will be
// fetched next: Step() checks for a pending IRQ before advancing PC for that
// cycle, and the synchronous SWI/undefined-instruction paths call in after
// Step() has already advanced PC past the faulting instruction. So every
// exception kind computes its link value from that same base, offset per the
// ARM7TDMI return-instruction convention (SUBS PC,LR,#n vs MOVS PC,LR).
func (c *CPU) enterException(exc exception) {
	r := c.registers
	oldCPSR := r.CPSR
	nextInstrAddr := r.PC

	var mode uint8
	var vector uint32
	var link uint32

	switch exc {
	case excReset:
		mode, vector, link = SVCMode, vectorReset, 0
	case excUndefined:
		mode, vector, link = UNDMode, vectorUndefined, nextInstrAddr
	case excSWI:
		mode, vector, link = SVCMode, vectorSWI, nextInstrAddr
	case excPrefetchAbort:
		mode, vector, link = ABTMode, vectorPrefetchAbort, nextInstrAddr+4
	case excDataAbort:
		mode, vector, link = ABTMode, vectorDataAbort, nextInstrAddr+4
	case excIRQ:
		mode, vector, link = IRQMode, vectorIRQ, nextInstrAddr+4
	case excFIQ:
		mode, vector, link = FIQMode, vectorFIQ, nextInstrAddr+4
	}

	r.SetMode(mode)
	r.SetSPSR(oldCPSR)
	if exc != excReset {
		r.SetReg(14, link)
	}
	r.SetThumbState(false)
	r.SetIRQDisabled(true)
	if exc == excReset || exc == excFIQ {
		r.SetFIQDisabled(true)
	}
	r.PC = vector
}
