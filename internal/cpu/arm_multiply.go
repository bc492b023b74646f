package cpu

// execMultiply runs MUL (Rd = Rm*Rs) and MLA (Rd = Rm*Rs + Rn). The ISA
// forbids Rd == 15 and Rd == Rm; real hardware produces unpredictable
// results rather than trapping, so this just computes the product.
func (c *CPU) execMultiply(instr ARMMultiplyInstruction) {
	r := c.registers
	rm := r.GetReg(instr.Rm)
	rs := r.GetReg(instr.Rs)
	result := rm * rs
	if instr.A {
		result += r.GetReg(instr.Rn)
	}
	r.SetReg(instr.Rd, result)

	if instr.S {
		r.SetFlagN(result&0x80000000 != 0)
		r.SetFlagZ(result == 0)
		// C is documented as destroyed (meaningless) by real ARM7TDMI MUL/MLA.
	}
}
