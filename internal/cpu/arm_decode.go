package cpu

import "fmt"

// DecodeInstruction_Arm classifies a 32-bit ARM instruction word and returns
// the typed struct matching its encoding family.
func DecodeInstruction_Arm(instruction uint32) interface{} {
	cond := ARMCondition((instruction >> 28) & 0x0F)

	switch (instruction >> 26) & 0x03 {
	case 0: // 00: Data Processing, Multiply, PSR transfer, BX, halfword transfer
		if ((instruction>>24)&0xF) == 0x0 && ((instruction>>4)&0xF) == 0x9 {
			return ARMMultiplyInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				A:              ((instruction >> 21) & 0x01) != 0,
				S:              ((instruction >> 20) & 0x01) != 0,
				Rd:             uint8((instruction >> 16) & 0x0F),
				Rn:             uint8((instruction >> 12) & 0x0F),
				Rs:             uint8((instruction >> 8) & 0x0F),
				Rm:             uint8(instruction & 0x0F),
			}
		}

		// Halfword/signed transfer: bits27-25=000, bit7=1, bit4=1, SH!=00.
		// SH==00 in this same slot is the reserved/SWP encoding, not this family.
		if ((instruction>>25)&0x7) == 0 && (instruction>>7)&1 == 1 && (instruction>>4)&1 == 1 {
			sh := uint8((instruction >> 5) & 0x3)
			if sh != 0 {
				useImm := (instruction>>22)&1 != 0
				h := ARMHalfwordTransferInstruction{
					ARMInstruction: ARMInstruction{Cond: cond},
					P:              (instruction>>24)&1 != 0,
					U:              (instruction>>23)&1 != 0,
					W:              (instruction>>21)&1 != 0,
					L:              (instruction>>20)&1 != 0,
					Rn:             uint8((instruction >> 16) & 0xF),
					Rd:             uint8((instruction >> 12) & 0xF),
					SH:             sh,
					I:              useImm,
				}
				if useImm {
					h.ImmOffset = uint8(((instruction>>8)&0xF)<<4 | (instruction & 0xF))
				} else {
					h.Rm = uint8(instruction & 0xF)
				}
				return h
			}
		}

		// PSR transfer (MRS/MSR) and BX share the TST/TEQ/CMP/CMN opcode
		// slots with S (bit 20) forced to 0 — real Data Processing always
		// sets S for those four opcodes, so S==0 there is unambiguous.
		opcode4 := uint8((instruction >> 21) & 0xF)
		sBit := (instruction>>20)&1 != 0
		if !sBit && opcode4 >= 0x8 && opcode4 <= 0xB {
			useSPSR := (opcode4>>1)&1 != 0
			write := opcode4&1 != 0
			immOperand := (instruction>>25)&1 != 0

			if !write {
				return ARMPSRTransferInstruction{
					ARMInstruction: ARMInstruction{Cond: cond},
					ToPSR:          false,
					UseSPSR:        useSPSR,
					Rd:             uint8((instruction >> 12) & 0xF),
				}
			}

			if !immOperand && opcode4 == 0x9 && (instruction>>4)&0xF == 0x1 {
				return ARMBranchExchangeInstruction{
					ARMInstruction: ARMInstruction{Cond: cond},
					Rm:             uint8(instruction & 0xF),
				}
			}

			fieldMask := uint8((instruction >> 16) & 0xF)
			if immOperand {
				rotate := uint32((instruction>>8)&0xF) * 2
				imm8 := instruction & 0xFF
				operand := (imm8 >> rotate) | (imm8 << ((32 - rotate) & 31))
				if rotate == 0 {
					operand = imm8
				}
				return ARMPSRTransferInstruction{
					ARMInstruction: ARMInstruction{Cond: cond},
					ToPSR:          true,
					UseSPSR:        useSPSR,
					FieldMask:      fieldMask,
					I:              true,
					Immediate:      operand,
				}
			}
			return ARMPSRTransferInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				ToPSR:          true,
				UseSPSR:        useSPSR,
				FieldMask:      fieldMask,
				I:              false,
				Rm:             uint8(instruction & 0xF),
			}
		}

		// Plain Data Processing.
		I := ((instruction >> 25) & 0x01) != 0
		S := ((instruction >> 20) & 0x01) != 0
		Rn := uint8((instruction >> 16) & 0x0F)
		Rd := uint8((instruction >> 12) & 0x0F)
		ShiftType := uint8((instruction >> 5) & 0x03)
		R := ((instruction >> 4) & 0x01) != 0
		Rm := uint8(instruction & 0x0F)

		var Is uint8
		var Rs uint8
		var Nn uint8

		if !I && !R {
			Is = uint8((instruction >> 7) & 0x1F)
		} else if I {
			Is = uint8((instruction >> 8) & 0x0F)
			Nn = uint8(instruction & 0xFF)
		} else if !I && R {
			Rs = uint8((instruction >> 8) & 0x0F)
		}

		return ARMDataProcessingInstruction{
			ARMInstruction: ARMInstruction{Cond: cond},
			I:              I,
			Opcode:         ARMDataProcessingOperation((instruction >> 21) & 0x0F),
			S:              S,
			Rn:             Rn,
			Rd:             Rd,
			ShiftType:      ARMShiftType(ShiftType),
			R:              R,
			Is:             Is,
			Rs:             Rs,
			Nn:             Nn,
			Rm:             Rm,
		}

	case 1: // 01: Load/Store (Single Data Transfer). Bit 25 here means the
		// inverse of Data Processing's I: 0 = flat 12-bit immediate offset,
		// 1 = register offset (optionally shifted by an immediate amount).
		regOffset := (instruction>>25)&1 != 0
		ls := ARMLoadStoreInstruction{
			ARMInstruction: ARMInstruction{Cond: cond},
			P:              ((instruction >> 24) & 0x01) != 0,
			U:              ((instruction >> 23) & 0x01) != 0,
			B:              ((instruction >> 22) & 0x01) != 0,
			W:              ((instruction >> 21) & 0x01) != 0,
			L:              ((instruction >> 20) & 0x01) != 0,
			Rn:             uint8((instruction >> 16) & 0x0F),
			Rd:             uint8((instruction >> 12) & 0x0F),
			RegOffset:      regOffset,
		}
		if regOffset {
			ls.ShiftAmount = uint8((instruction >> 7) & 0x1F)
			ls.ShiftType = ARMShiftType((instruction >> 5) & 0x3)
			ls.Rm = uint8(instruction & 0xF)
		} else {
			ls.Offset = instruction & 0x0FFF
		}
		return ls

	case 2: // 10: Branch/Branch-with-Link or Block Data Transfer. The third
		// bit of the 3-bit top-level opcode (bit25, since the outer switch
		// already consumed bits27-26) is 0 for Block Data Transfer (100) and
		// 1 for Branch (101).
		if ((instruction >> 25) & 0x01) == 0 {
			return ARMBlockDataTransferInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				P:              ((instruction >> 24) & 0x01) != 0,
				U:              ((instruction >> 23) & 0x01) != 0,
				S:              ((instruction >> 22) & 0x01) != 0,
				W:              ((instruction >> 21) & 0x01) != 0,
				L:              ((instruction >> 20) & 0x01) != 0,
				Rn:             uint8((instruction >> 16) & 0x0F),
				RegisterList:   uint16(instruction & 0xFFFF),
			}
		}

		offset := instruction & 0x00FFFFFF
		if offset&0x00800000 != 0 {
			offset |= 0xFF000000
		}
		targetOffset := offset << 2
		return ARMBranchInstruction{
			ARMInstruction: ARMInstruction{Cond: cond},
			Link:           ((instruction >> 24) & 0x01) == 1,
			TargetAddr:     targetOffset,
		}

	case 3: // 11: Software Interrupt or Coprocessor
		if ((instruction >> 24) & 0x0F) == 0x0F {
			return ARMSWIInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				Immediate:      instruction & 0x00FFFFFF,
			}
		}

		// Coprocessor instructions never occur in GBA software; fall back to
		// a generic control record so the executor raises Undefined.
		return ARMControlInstruction{
			ARMInstruction: ARMInstruction{Cond: cond},
			Opcode:         instruction & 0x0FFFFFFF,
		}
	default:
		panic(fmt.Sprintf("DecodeInstruction_Arm: unreachable bucket %d", (instruction>>26)&0x03))
	}
}
