package cpu

import "GoBA/internal/bitops"

// loadStoreOffset resolves a Single Data Transfer's offset value, applying
// the barrel shifter (immediate-amount only; ARM never allows a
// register-specified shift amount in this addressing mode) when RegOffset.
func (c *CPU) loadStoreOffset(instr ARMLoadStoreInstruction) uint32 {
	if !instr.RegOffset {
		return instr.Offset
	}
	value := c.registers.GetReg(instr.Rm)
	result, _ := shiftImmediate(value, instr.ShiftType, instr.ShiftAmount, c.registers.GetFlagC())
	return result
}

// execLoadStore runs LDR/STR/LDRB/STRB (spec.md §4.3). Misalignment on word
// loads is the bus's concern (it returns the GBA's documented rotated
// value); this only computes the effective address and writeback.
func (c *CPU) execLoadStore(instr ARMLoadStoreInstruction) {
	r := c.registers
	offset := c.loadStoreOffset(instr)
	base := c.readOperand(instr.Rn)

	var addr uint32
	if instr.U {
		addr = base + offset
	} else {
		addr = base - offset
	}

	effective := base
	if instr.P {
		effective = addr
	}

	if instr.L {
		var value uint32
		if instr.B {
			value = uint32(c.bus.Read8(effective))
		} else {
			value = c.bus.Read32(effective)
		}
		if instr.Rd == 15 {
			r.PC = value &^ 3
		} else {
			r.SetReg(instr.Rd, value)
		}
	} else {
		value := c.readOperand(instr.Rd)
		if instr.B {
			c.bus.Write8(effective, uint8(value))
		} else {
			c.bus.Write32(effective, value)
		}
	}

	if !instr.P || instr.W {
		r.SetReg(instr.Rn, addr)
	}
}

// execHalfwordTransfer runs LDRH/STRH/LDRSB/LDRSH, whose addressing mode
// only offers an 8-bit split immediate or a bare register (spec.md §4.3).
func (c *CPU) execHalfwordTransfer(instr ARMHalfwordTransferInstruction) {
	r := c.registers
	var offset uint32
	if instr.I {
		offset = uint32(instr.ImmOffset)
	} else {
		offset = r.GetReg(instr.Rm)
	}
	base := c.readOperand(instr.Rn)

	var addr uint32
	if instr.U {
		addr = base + offset
	} else {
		addr = base - offset
	}

	effective := base
	if instr.P {
		effective = addr
	}

	if instr.L {
		var value uint32
		switch instr.SH {
		case 1: // unsigned halfword
			value = uint32(c.bus.Read16(effective))
		case 2: // signed byte
			value = uint32(bitops.SignExtend8(c.bus.Read8(effective)))
		case 3: // signed halfword
			value = uint32(bitops.SignExtend16(c.bus.Read16(effective)))
		}
		r.SetReg(instr.Rd, value)
	} else {
		// Only SH==1 (STRH) is a valid store encoding; SH 2/3 are LDRSB/LDRSH-only.
		c.bus.Write16(effective, uint16(c.readOperand(instr.Rd)))
	}

	if !instr.P || instr.W {
		r.SetReg(instr.Rn, addr)
	}
}
