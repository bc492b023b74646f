package cpu

// executeThumb decodes and runs one Thumb-state instruction. pc is the
// address it was fetched from (already advanced past in c.registers.PC by
// the caller), used to reconstruct the PC+4 prefetch value Thumb operands
// see, and as the base for PC-relative addressing.
func (c *CPU) executeThumb(instr uint16, pc uint32) {
	switch {
	case instr&0xF800 == 0x1800: // 00011: add/subtract (format 2) — checked
		// ahead of format 1's broader mask since format 2 lives in format 1's
		// reserved Op==3 slot.
		c.thumbAddSubtract(instr)
	case instr&0xE000 == 0x0000: // 000: move shifted register (format 1)
		c.thumbMoveShifted(instr)
	case instr&0xE000 == 0x2000: // 001: move/compare/add/subtract immediate (format 3)
		c.thumbImmediateOp(instr)
	case instr&0xFC00 == 0x4000: // 010000: ALU operations (format 4)
		c.thumbALU(instr)
	case instr&0xFC00 == 0x4400: // 010001: hi register ops / BX (format 5)
		c.thumbHiRegOps(instr)
	case instr&0xF800 == 0x4800: // 01001: PC-relative load (format 6)
		c.thumbPCRelativeLoad(instr, pc)
	case instr&0xF200 == 0x5000: // 0101, bit9==0: load/store with register offset (format 7)
		c.thumbLoadStoreRegOffset(instr)
	case instr&0xF200 == 0x5200: // 0101, bit9==1: load/store sign-extended (format 8)
		c.thumbLoadStoreSignExtended(instr)
	case instr&0xE000 == 0x6000: // 011: load/store with immediate offset (format 9)
		c.thumbLoadStoreImmOffset(instr)
	case instr&0xF000 == 0x8000: // 1000: load/store halfword (format 10)
		c.thumbLoadStoreHalfword(instr)
	case instr&0xF000 == 0x9000: // 1001: SP-relative load/store (format 11)
		c.thumbSPRelative(instr)
	case instr&0xF000 == 0xA000: // 1010: load address (format 12)
		c.thumbLoadAddress(instr, pc)
	case instr&0xFF00 == 0xB000: // 10110000: add offset to SP (format 13)
		c.thumbAddOffsetToSP(instr)
	case instr&0xF600 == 0xB400: // 1011x10x: push/pop registers (format 14)
		c.thumbPushPop(instr)
	case instr&0xF000 == 0xC000: // 1100: multiple load/store (format 15)
		c.thumbMultipleLoadStore(instr)
	case instr&0xFF00 == 0xDF00: // 11011111: software interrupt (format 17) —
		// checked ahead of format 16 since it shares the same top nibble.
		c.enterException(excSWI)
	case instr&0xF000 == 0xD000: // 1101: conditional branch (format 16)
		c.thumbConditionalBranch(instr, pc)
	case instr&0xF800 == 0xE000: // 11100: unconditional branch (format 18)
		c.thumbUnconditionalBranch(instr, pc)
	case instr&0xF000 == 0xF000: // 1111: long branch with link (format 19)
		c.thumbLongBranchLink(instr, pc)
	default:
		c.enterException(excUndefined)
	}
}
