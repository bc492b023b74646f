package cpu

import "GoBA/internal/bitops"

// thumbMoveShifted runs format 1: LSL/LSR/ASR Rd, Rs, #Offset5.
func (c *CPU) thumbMoveShifted(instr uint16) {
	op := (instr >> 11) & 0x3
	offset5 := uint8((instr >> 6) & 0x1F)
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	var shiftType ARMShiftType
	switch op {
	case 0:
		shiftType = LSL
	case 1:
		shiftType = LSR
	case 2:
		shiftType = ASR
	}

	r := c.registers
	result, carry := shiftImmediate(r.GetReg(rs), shiftType, offset5, r.GetFlagC())
	r.SetReg(rd, result)
	c.setLogicalFlags(result, carry)
}

// thumbAddSubtract runs format 2: ADD/SUB Rd, Rs, Rn|#Offset3.
func (c *CPU) thumbAddSubtract(instr uint16) {
	immFlag := (instr>>10)&1 != 0
	subOp := (instr>>9)&1 != 0
	field := uint8((instr >> 6) & 0x7)
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	r := c.registers
	rsVal := r.GetReg(rs)
	var operand uint32
	if immFlag {
		operand = uint32(field)
	} else {
		operand = r.GetReg(field)
	}

	var result uint32
	var carry, overflow bool
	if subOp {
		result = rsVal - operand
		carry = subCarry(rsVal, operand)
		overflow = subOverflow(rsVal, operand, result)
	} else {
		result = rsVal + operand
		carry = addCarry(rsVal, operand, false)
		overflow = addOverflow(rsVal, operand, result)
	}
	r.SetReg(rd, result)
	c.setArithmeticFlags(result, carry, overflow)
}

// thumbImmediateOp runs format 3: MOV/CMP/ADD/SUB Rd, #Offset8.
func (c *CPU) thumbImmediateOp(instr uint16) {
	op := (instr >> 11) & 0x3
	rd := uint8((instr >> 8) & 0x7)
	imm := uint32(instr & 0xFF)

	r := c.registers
	rdVal := r.GetReg(rd)

	switch op {
	case 0: // MOV
		r.SetReg(rd, imm)
		c.setLogicalFlags(imm, r.GetFlagC())
	case 1: // CMP
		result := rdVal - imm
		c.setArithmeticFlags(result, subCarry(rdVal, imm), subOverflow(rdVal, imm, result))
	case 2: // ADD
		result := rdVal + imm
		r.SetReg(rd, result)
		c.setArithmeticFlags(result, addCarry(rdVal, imm, false), addOverflow(rdVal, imm, result))
	case 3: // SUB
		result := rdVal - imm
		r.SetReg(rd, result)
		c.setArithmeticFlags(result, subCarry(rdVal, imm), subOverflow(rdVal, imm, result))
	}
}

// thumbALU runs format 4's 16 two-register ALU operations.
func (c *CPU) thumbALU(instr uint16) {
	op := (instr >> 6) & 0xF
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	r := c.registers
	rdVal := r.GetReg(rd)
	rsVal := r.GetReg(rs)
	carryIn := r.GetFlagC()

	switch op {
	case 0: // AND
		result := rdVal & rsVal
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carryIn)
	case 1: // EOR
		result := rdVal ^ rsVal
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carryIn)
	case 2: // LSL
		result, carry := shiftByRegister(rdVal, LSL, uint8(rsVal), carryIn)
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carry)
	case 3: // LSR
		result, carry := shiftByRegister(rdVal, LSR, uint8(rsVal), carryIn)
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carry)
	case 4: // ASR
		result, carry := shiftByRegister(rdVal, ASR, uint8(rsVal), carryIn)
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carry)
	case 5: // ADC
		result := rdVal + rsVal + b2u32(carryIn)
		r.SetReg(rd, result)
		c.setArithmeticFlags(result, addCarry(rdVal, rsVal, carryIn), addOverflow(rdVal, rsVal, result))
	case 6: // SBC
		borrow := 1 - b2u32(carryIn)
		result := rdVal - rsVal - borrow
		r.SetReg(rd, result)
		c.setArithmeticFlags(result, subCarry(rdVal, rsVal+borrow), subOverflow(rdVal, rsVal+borrow, result))
	case 7: // ROR
		result, carry := shiftByRegister(rdVal, ROR, uint8(rsVal), carryIn)
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carry)
	case 8: // TST
		c.setLogicalFlags(rdVal&rsVal, carryIn)
	case 9: // NEG
		result := uint32(0) - rsVal
		r.SetReg(rd, result)
		c.setArithmeticFlags(result, subCarry(0, rsVal), subOverflow(0, rsVal, result))
	case 10: // CMP
		result := rdVal - rsVal
		c.setArithmeticFlags(result, subCarry(rdVal, rsVal), subOverflow(rdVal, rsVal, result))
	case 11: // CMN
		result := rdVal + rsVal
		c.setArithmeticFlags(result, addCarry(rdVal, rsVal, false), addOverflow(rdVal, rsVal, result))
	case 12: // ORR
		result := rdVal | rsVal
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carryIn)
	case 13: // MUL
		result := rdVal * rsVal
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carryIn) // C is destroyed by real hardware
	case 14: // BIC
		result := rdVal &^ rsVal
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carryIn)
	case 15: // MVN
		result := ^rsVal
		r.SetReg(rd, result)
		c.setLogicalFlags(result, carryIn)
	}
}

// thumbHiRegOps runs format 5: ADD/CMP/MOV across the R0-R7/R8-R15 divide,
// and BX.
func (c *CPU) thumbHiRegOps(instr uint16) {
	op := (instr >> 8) & 0x3
	h1 := (instr>>7)&1 != 0
	h2 := (instr>>6)&1 != 0
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)
	if h2 {
		rs += 8
	}
	if h1 {
		rd += 8
	}

	r := c.registers
	rsVal := c.readOperand(rs)

	switch op {
	case 0: // ADD
		result := c.readOperand(rd) + rsVal
		if rd == 15 {
			result &^= 1
		}
		r.SetReg(rd, result)
	case 1: // CMP
		rdVal := c.readOperand(rd)
		result := rdVal - rsVal
		c.setArithmeticFlags(result, subCarry(rdVal, rsVal), subOverflow(rdVal, rsVal, result))
	case 2: // MOV
		if rd == 15 {
			rsVal &^= 1
		}
		r.SetReg(rd, rsVal)
	case 3: // BX
		thumb := rsVal&1 != 0
		r.SetThumbState(thumb)
		if thumb {
			r.PC = rsVal &^ 1
		} else {
			r.PC = rsVal &^ 3
		}
	}
}

// thumbPCRelativeLoad runs format 6: LDR Rd, [PC, #Word8].
func (c *CPU) thumbPCRelativeLoad(instr uint16, pc uint32) {
	rd := uint8((instr >> 8) & 0x7)
	word8 := uint32(instr&0xFF) << 2
	base := (pc + 4) &^ 3
	c.registers.SetReg(rd, c.bus.Read32(base+word8))
}

// thumbLoadStoreRegOffset runs format 7: LDR/STR{B} Rd, [Rb, Ro].
func (c *CPU) thumbLoadStoreRegOffset(instr uint16) {
	l := (instr>>11)&1 != 0
	b := (instr>>10)&1 != 0
	ro := uint8((instr >> 6) & 0x7)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	r := c.registers
	addr := r.GetReg(rb) + r.GetReg(ro)

	switch {
	case l && b:
		r.SetReg(rd, uint32(c.bus.Read8(addr)))
	case l && !b:
		r.SetReg(rd, c.bus.Read32(addr))
	case !l && b:
		c.bus.Write8(addr, uint8(r.GetReg(rd)))
	default:
		c.bus.Write32(addr, r.GetReg(rd))
	}
}

// thumbLoadStoreSignExtended runs format 8: STRH/LDRH/LDSB/LDSH Rd, [Rb, Ro].
func (c *CPU) thumbLoadStoreSignExtended(instr uint16) {
	h := (instr>>11)&1 != 0
	s := (instr>>10)&1 != 0
	ro := uint8((instr >> 6) & 0x7)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	r := c.registers
	addr := r.GetReg(rb) + r.GetReg(ro)

	switch {
	case !s && !h: // STRH
		c.bus.Write16(addr, uint16(r.GetReg(rd)))
	case !s && h: // LDRH
		r.SetReg(rd, uint32(c.bus.Read16(addr)))
	case s && !h: // LDSB
		r.SetReg(rd, uint32(bitops.SignExtend8(c.bus.Read8(addr))))
	default: // LDSH
		r.SetReg(rd, uint32(bitops.SignExtend16(c.bus.Read16(addr))))
	}
}

// thumbLoadStoreImmOffset runs format 9: LDR/STR{B} Rd, [Rb, #Offset5].
func (c *CPU) thumbLoadStoreImmOffset(instr uint16) {
	b := (instr>>12)&1 != 0
	l := (instr>>11)&1 != 0
	offset5 := uint32((instr >> 6) & 0x1F)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	r := c.registers
	var addr uint32
	if b {
		addr = r.GetReg(rb) + offset5
	} else {
		addr = r.GetReg(rb) + offset5*4
	}

	switch {
	case l && b:
		r.SetReg(rd, uint32(c.bus.Read8(addr)))
	case l && !b:
		r.SetReg(rd, c.bus.Read32(addr))
	case !l && b:
		c.bus.Write8(addr, uint8(r.GetReg(rd)))
	default:
		c.bus.Write32(addr, r.GetReg(rd))
	}
}

// thumbLoadStoreHalfword runs format 10: LDRH/STRH Rd, [Rb, #Offset5].
func (c *CPU) thumbLoadStoreHalfword(instr uint16) {
	l := (instr>>11)&1 != 0
	offset5 := uint32((instr>>6)&0x1F) * 2
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	r := c.registers
	addr := r.GetReg(rb) + offset5
	if l {
		r.SetReg(rd, uint32(c.bus.Read16(addr)))
	} else {
		c.bus.Write16(addr, uint16(r.GetReg(rd)))
	}
}

// thumbSPRelative runs format 11: LDR/STR Rd, [SP, #Word8].
func (c *CPU) thumbSPRelative(instr uint16) {
	l := (instr>>11)&1 != 0
	rd := uint8((instr >> 8) & 0x7)
	word8 := uint32(instr&0xFF) << 2

	r := c.registers
	addr := r.GetReg(13) + word8
	if l {
		r.SetReg(rd, c.bus.Read32(addr))
	} else {
		c.bus.Write32(addr, r.GetReg(rd))
	}
}

// thumbLoadAddress runs format 12: ADD Rd, PC|SP, #Word8.
func (c *CPU) thumbLoadAddress(instr uint16, pc uint32) {
	usesSP := (instr>>11)&1 != 0
	rd := uint8((instr >> 8) & 0x7)
	word8 := uint32(instr&0xFF) << 2

	var base uint32
	if usesSP {
		base = c.registers.GetReg(13)
	} else {
		base = (pc + 4) &^ 3
	}
	c.registers.SetReg(rd, base+word8)
}

// thumbAddOffsetToSP runs format 13: ADD SP, #+/-Word7.
func (c *CPU) thumbAddOffsetToSP(instr uint16) {
	negative := (instr>>7)&1 != 0
	word7 := uint32(instr&0x7F) << 2

	r := c.registers
	if negative {
		r.SetReg(13, r.GetReg(13)-word7)
	} else {
		r.SetReg(13, r.GetReg(13)+word7)
	}
}

// thumbPushPop runs format 14: PUSH/POP {Rlist, LR/PC}.
func (c *CPU) thumbPushPop(instr uint16) {
	l := (instr>>11)&1 != 0
	withExtra := (instr>>8)&1 != 0 // LR on push, PC on pop
	rlist := uint8(instr & 0xFF)

	r := c.registers
	n := bitops.PopCount16(uint16(rlist))
	if withExtra {
		n++
	}

	if l { // POP
		addr := r.GetReg(13)
		for reg := uint8(0); reg < 8; reg++ {
			if rlist&(1<<reg) == 0 {
				continue
			}
			r.SetReg(reg, c.bus.Read32(addr))
			addr += 4
		}
		if withExtra {
			r.PC = c.bus.Read32(addr) &^ 1
			addr += 4
		}
		r.SetReg(13, addr)
		return
	}

	// PUSH
	addr := r.GetReg(13) - uint32(4*n)
	start := addr
	for reg := uint8(0); reg < 8; reg++ {
		if rlist&(1<<reg) == 0 {
			continue
		}
		c.bus.Write32(addr, r.GetReg(reg))
		addr += 4
	}
	if withExtra {
		c.bus.Write32(addr, r.GetReg(14))
	}
	r.SetReg(13, start)
}

// thumbMultipleLoadStore runs format 15: LDMIA/STMIA Rb!, {Rlist}.
func (c *CPU) thumbMultipleLoadStore(instr uint16) {
	l := (instr>>11)&1 != 0
	rb := uint8((instr >> 8) & 0x7)
	rlist := uint8(instr & 0xFF)

	r := c.registers
	addr := r.GetReg(rb)
	for reg := uint8(0); reg < 8; reg++ {
		if rlist&(1<<reg) == 0 {
			continue
		}
		if l {
			r.SetReg(reg, c.bus.Read32(addr))
		} else {
			c.bus.Write32(addr, r.GetReg(reg))
		}
		addr += 4
	}
	r.SetReg(rb, addr)
}

// thumbConditionalBranch runs format 16, reporting every taken backward
// branch to the idle-loop detector (spec.md §4.9).
func (c *CPU) thumbConditionalBranch(instr uint16, pc uint32) {
	cond := ARMCondition((instr >> 8) & 0xF)
	if !c.checkCondition(cond) {
		return
	}

	offset := bitops.SignExtend8(uint8(instr&0xFF)) * 2
	newPC := uint32(int32(pc+4) + offset)

	if c.waitloop != nil && newPC <= pc {
		var regs [15]uint32
		for i := uint8(0); i < 15; i++ {
			regs[i] = c.registers.GetReg(i)
		}
		c.waitloop.OnThumbLoop(pc, newPC, regs)
	}

	c.registers.PC = newPC
}

// thumbUnconditionalBranch runs format 18.
func (c *CPU) thumbUnconditionalBranch(instr uint16, pc uint32) {
	offset := bitops.SignExtend(uint32(instr&0x7FF), 11) << 1
	c.registers.PC = uint32(int32(pc+4) + offset)
}

// thumbLongBranchLink runs format 19 (BL), split across two instructions:
// the first stashes a PC-relative high part in LR, the second combines it
// with the low part and leaves the Thumb return address in LR.
func (c *CPU) thumbLongBranchLink(instr uint16, pc uint32) {
	h := (instr>>11)&1 != 0
	offset11 := uint32(instr & 0x7FF)
	r := c.registers

	if !h {
		signExtended := bitops.SignExtend(offset11, 11)
		r.SetReg(14, uint32(int32(pc+4)+(signExtended<<12)))
		return
	}

	next := (pc + 2) | 1
	r.PC = r.GetReg(14) + (offset11 << 1)
	r.SetReg(14, next)
}
