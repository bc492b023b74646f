package cpu

import "GoBA/internal/bitops"

// userBankGet/userBankSet access R8-R14 the way the S-bit on LDM/STM
// demands when the current mode isn't User/System: the non-FIQ R8-R12 bank
// (r.R array) is always the user view regardless of current mode, only
// R13/R14 need to bypass the current mode's banked SP/LR explicitly.
func (c *CPU) userBankGet(reg uint8) uint32 {
	r := c.registers
	switch reg {
	case 13:
		return r.SP_usr
	case 14:
		return r.LR_usr
	default:
		return r.R[reg]
	}
}

func (c *CPU) userBankSet(reg uint8, value uint32) {
	r := c.registers
	switch reg {
	case 13:
		r.SP_usr = value
	case 14:
		r.LR_usr = value
	default:
		r.R[reg] = value
	}
}

// execBlockDataTransfer runs LDM/STM (spec.md §4.3), including the S-bit's
// two distinct meanings: force user-bank registers when PC isn't in the
// list, or restore CPSR from SPSR when an LDM loads PC.
func (c *CPU) execBlockDataTransfer(instr ARMBlockDataTransferInstruction) {
	r := c.registers
	n := bitops.PopCount16(instr.RegisterList)
	base := r.GetReg(instr.Rn)

	// Empty register list (spec.md §4.4): real hardware still transfers a
	// single word — R15 — at the base address regardless of the P/U
	// addressing mode, and still advances the base by 0x40 (as if 16
	// registers had been listed), rather than degenerating into a no-op.
	if n == 0 {
		if instr.L {
			r.PC = c.bus.Read32(base) &^ 3
		} else {
			c.bus.Write32(base, r.PC+4)
		}
		if instr.W {
			if instr.U {
				r.SetReg(instr.Rn, base+0x40)
			} else {
				r.SetReg(instr.Rn, base-0x40)
			}
		}
		return
	}

	var lowAddr, finalBase uint32
	if instr.U {
		finalBase = base + uint32(4*n)
		if instr.P {
			lowAddr = base + 4
		} else {
			lowAddr = base
		}
	} else {
		finalBase = base - uint32(4*n)
		if instr.P {
			lowAddr = base - uint32(4*n)
		} else {
			lowAddr = base - uint32(4*(n-1))
		}
	}

	loadsPC := instr.L && instr.RegisterList&(1<<15) != 0
	useUserBank := instr.S && !loadsPC

	rnInList := instr.RegisterList&(1<<instr.Rn) != 0
	addr := lowAddr
	for reg := uint8(0); reg < 16; reg++ {
		if instr.RegisterList&(1<<reg) == 0 {
			continue
		}
		if instr.L {
			value := c.bus.Read32(addr)
			switch {
			case reg == 15:
				r.PC = value &^ 3
			case useUserBank:
				c.userBankSet(reg, value)
			default:
				r.SetReg(reg, value)
			}
		} else {
			var value uint32
			switch {
			case reg == 15:
				value = r.PC + 4 // PC+8 prefetch value, seen as a plain operand here
			case useUserBank:
				value = c.userBankGet(reg)
			default:
				value = r.GetReg(reg)
			}
			c.bus.Write32(addr, value)
		}
		addr += 4
	}

	if loadsPC && instr.S {
		r.SetCPSR(r.GetSPSR())
	}

	if instr.W && !(instr.L && rnInList) {
		r.SetReg(instr.Rn, finalBase)
	}
}
