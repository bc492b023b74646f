package cpu

// execBranch runs B and BL. TargetAddr is the sign-extended, already
// word-aligned (<<2) 24-bit offset from DecodeInstruction_Arm; the base for
// the jump is PC+8, the same prefetch value the instruction would have seen
// as an operand.
func (c *CPU) execBranch(instr ARMBranchInstruction) {
	r := c.registers
	base := r.PC + 4 // r.PC already holds the post-fetch PC+4; +4 more gives PC+8
	if instr.Link {
		r.SetReg(14, r.PC)
	}
	r.PC = base + instr.TargetAddr
}

// execBranchExchange runs BX: jump to Rm, switching to Thumb state if its
// bit 0 is set. Rm==15 is permitted by the ISA (jumps to PC+8, ARM state).
func (c *CPU) execBranchExchange(instr ARMBranchExchangeInstruction) {
	r := c.registers
	target := c.readOperand(instr.Rm)
	thumb := target&1 != 0
	r.SetThumbState(thumb)
	if thumb {
		r.PC = target &^ 1
	} else {
		r.PC = target &^ 3
	}
}
