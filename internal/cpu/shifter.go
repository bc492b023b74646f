package cpu

// shiftImmediate applies one of the four ARM shift types where the amount
// comes from the instruction's 5-bit immediate field (spec.md §4.1,
// SPEC_FULL.md §C.1): amount==0 carries ISA-specific special meaning for
// every type except LSL, where it is a true no-op.
func shiftImmediate(value uint32, shiftType ARMShiftType, amount uint8, carryIn bool) (uint32, bool) {
	switch shiftType {
	case LSL:
		if amount == 0 {
			return value, carryIn
		}
		return value << amount, (value>>(32-uint32(amount)))&1 != 0

	case LSR:
		// LSR #0 is encoded as LSR #32: result 0, carry out is bit 31.
		if amount == 0 {
			return 0, value&0x80000000 != 0
		}
		return value >> amount, (value>>(amount-1))&1 != 0

	case ASR:
		// ASR #0 is encoded as ASR #32: result and carry both come from the
		// sign bit (original_source/arm7tdmi/barrel_shifter.hpp).
		if amount == 0 {
			if value&0x80000000 != 0 {
				return 0xFFFFFFFF, true
			}
			return 0, false
		}
		return uint32(int32(value) >> amount), (value>>(amount-1))&1 != 0

	case ROR:
		// ROR #0 is encoded as RRX: rotate right one bit through the carry
		// flag rather than plain rotation.
		if amount == 0 {
			carryOut := value&1 != 0
			result := value >> 1
			if carryIn {
				result |= 0x80000000
			}
			return result, carryOut
		}
		n := amount % 32
		if n == 0 {
			return value, value&0x80000000 != 0
		}
		return (value >> n) | (value << (32 - n)), (value>>(n-1))&1 != 0
	}
	return value, carryIn
}

// shiftByRegister applies a shift whose amount comes from the bottom byte of
// a register (spec.md §4.1's by-register form): amount==0 is always an
// identity (operand and carry both pass through unchanged), 1-31 behaves
// like the immediate form, 32 is a documented boundary per shift type, and
// anything beyond 32 either saturates (ASR, ROR wraps mod 32) or zeroes out
// (LSL, LSR) — original_source/arm7tdmi/barrel_shifter.hpp's exact formulas.
func shiftByRegister(value uint32, shiftType ARMShiftType, amount uint8, carryIn bool) (uint32, bool) {
	if amount == 0 {
		return value, carryIn
	}

	switch shiftType {
	case LSL:
		switch {
		case amount < 32:
			return value << amount, (value>>(32-uint32(amount)))&1 != 0
		case amount == 32:
			return 0, value&1 != 0
		default:
			return 0, false
		}

	case LSR:
		switch {
		case amount < 32:
			return value >> amount, (value>>(amount-1))&1 != 0
		case amount == 32:
			return 0, value&0x80000000 != 0
		default:
			return 0, false
		}

	case ASR:
		if amount < 32 {
			return uint32(int32(value) >> amount), (value>>(amount-1))&1 != 0
		}
		if value&0x80000000 != 0 {
			return 0xFFFFFFFF, true
		}
		return 0, false

	case ROR:
		n := amount % 32
		if n == 0 {
			return value, value&0x80000000 != 0
		}
		return (value >> n) | (value << (32 - n)), (value>>(n-1))&1 != 0
	}
	return value, carryIn
}
