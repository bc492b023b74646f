// Package waitloop implements the idle-loop detector (spec.md §4.9),
// grounded directly on
// _examples/original_source/src/core/waitloop.{hpp,cpp}: a three-step state
// machine (Step1/Step2/Invalid) that recognizes a Thumb backward conditional
// branch whose body only polls memory and compares registers, then lets the
// scheduler fast-forward straight to the next event instead of single-
// stepping the CPU through a spin loop.
//
// The original drives this by scheduling a recurring zero-delay "idle"
// callback that loops internally while in_waitloop holds. This package
// instead exposes IsInWaitloop so the CPU's step loop can call
// Scheduler.FastForward itself when it's true — same effect, without a
// callback that loops inside the scheduler's own fire() (spec.md §4.3
// forbids callbacks recursing into advance).
package waitloop

import "GoBA/internal/interfaces"

// Event names what changed while a waitloop might be active (spec.md §4.9).
type Event int

const (
	EventIRQ Event = iota
	EventDMA
	EventIO
)

type step int

const (
	step1 step = iota
	step2
	stepInvalid
)

const (
	romBase = 0x08000000
	romTop  = 0x09FFFFFF
)

// Detector recognizes a recurring backward Thumb branch whose body is a
// pure register/memory poll and reports when the CPU is safely idling in
// one, so the scheduler can be fast-forwarded instead of interpreted.
type Detector struct {
	rom []byte

	pc           uint32
	pollAddress  uint32
	savedRegs    [15]uint32
	step         step
	inWaitloop   bool
	eventChanged bool
	enabled      bool

	sched interfaces.Scheduler
}

func New(sched interfaces.Scheduler) *Detector {
	return &Detector{sched: sched}
}

// SetROM gives the detector direct read access to the cartridge image, the
// same way the original scans gba.rom rather than going through the bus.
func (d *Detector) SetROM(rom []byte) { d.rom = rom }

// Reset clears loop-tracking state; enable is the master on/off switch
// (spec.md §4.9 notes this optimization is optional).
func (d *Detector) Reset(enable bool) {
	d.pc = 0
	d.pollAddress = 0
	d.savedRegs = [15]uint32{}
	d.step = step1
	d.inWaitloop = false
	d.eventChanged = false
	d.enabled = enable
}

func (d *Detector) IsEnabled() bool     { return d.enabled }
func (d *Detector) IsInWaitloop() bool  { return d.inWaitloop }

func (d *Detector) read16(addr uint32) uint16 {
	if len(d.rom) == 0 {
		return 0
	}
	addr %= uint32(len(d.rom))
	if int(addr)+1 >= len(d.rom) {
		return 0
	}
	return uint16(d.rom[addr]) | uint16(d.rom[addr+1])<<8
}

// isValidThumb reports whether opcode is one of the handful of
// register/immediate-only Thumb forms the loop body is allowed to contain
// (move-shifted-register, hi-register ops other than BX, move/cmp/add/sub
// immediate, add/subtract, ALU ops).
func isValidThumb(opcode uint16) bool {
	if opcode&0xFC00 == 0x4400 { // hi register operations
		return (opcode>>8)&0x3 != 0x3 // anything but BX
	}
	if opcode&0xE000 == 0x2000 { // move/compare/add/subtract immediate
		return true
	}
	if opcode&0xF800 == 0x1800 { // add/subtract
		return true
	}
	if opcode&0xE000 == 0x0000 { // move shifted register
		return true
	}
	if opcode&0xFC00 == 0x4000 { // ALU operations
		return true
	}
	return false
}

// isCmpThumb reports whether opcode is specifically a comparison: the
// tightest of the forms above, required for the loop's final instruction.
func isCmpThumb(opcode uint16) bool {
	if opcode&0xFF00 == 0x4500 { // hi register cmp
		return true
	}
	if opcode&0xF800 == 0x2800 { // move/compare/add/subtract immediate, op=CMP
		return true
	}
	if opcode&0xFFC0 == 0x4280 { // ALU family, op=1010 (CMP)
		return true
	}
	return false
}

// pollAddrThumb extracts the memory address a load instruction would poll,
// or 0xFFFFFFFF if opcode isn't one of the recognized load forms.
func pollAddrThumb(opcode uint16, regs [15]uint32) uint32 {
	reg := func(i uint16) uint32 {
		if i < 15 {
			return regs[i]
		}
		return 0
	}

	switch {
	case opcode&0xF800 == 0x8800: // load/store halfword
		rb := (opcode >> 3) & 0x7
		offset := uint32((opcode>>6)&0x1F) << 1
		return reg(rb) + offset

	case opcode&0xE800 == 0x6800: // load/store with immediate offset
		rb := (opcode >> 3) & 0x7
		offset := uint32((opcode >> 6) & 0x1F)
		base := reg(rb)
		if opcode&(1<<12) != 0 {
			return base + offset
		}
		return base + (offset << 2)

	case opcode&0xFA00 == 0x5800: // load/store with register offset
		ro := (opcode >> 6) & 0x7
		rb := (opcode >> 3) & 0x7
		return (reg(rb) + reg(ro)) &^ 1

	case opcode&0xFA00 == 0x5A00: // load/store sign-extended byte/halfword
		ro := (opcode >> 6) & 0x7
		rb := (opcode >> 3) & 0x7
		return (reg(rb) + reg(ro)) &^ 1
	}

	return 0xFFFFFFFF
}

func ioAddrAllowed(addr uint32) bool {
	switch addr {
	case 0x0006, 0x0004, // VCOUNT, DISPSTAT
		0x00B8, 0x00BA, 0x00C4, 0x00C6, 0x00D0, 0x00D2, 0x00DC, 0x00DE: // DMAxCNT_L/H
		return true
	default:
		return false
	}
}

func (d *Detector) evaluateStep1(currentPC, newJumpPC uint32, regs [15]uint32) bool {
	if currentPC <= newJumpPC || newJumpPC < romBase || newJumpPC > romTop {
		return false
	}

	length := currentPC - newJumpPC
	if length > 0xE {
		return false
	}

	localPC := (newJumpPC - romBase) &^ 1
	firstOpcode := d.read16(localPC)
	lastOpcode := d.read16(localPC + length - 6)

	poll := pollAddrThumb(firstOpcode, regs)
	if poll == 0xFFFFFFFF {
		return false
	}
	poll &^= 1
	d.pollAddress = poll

	if !isCmpThumb(lastOpcode) {
		return false
	}

	switch (poll >> 24) & 0xF {
	case 0x2, 0x3, 0x5, 0x6, 0x7: // EWRAM, IWRAM, PRAM, VRAM, OAM
	case 0x4:
		if !ioAddrAllowed(poll & 0x3FF) {
			return false
		}
	default:
		return false
	}

	switch length {
	case 0x8:
		return true
	case 0xA:
		return isValidThumb(d.read16(localPC + 2))
	case 0xC:
		return isValidThumb(d.read16(localPC+2)) && isValidThumb(d.read16(localPC+4))
	case 0xE:
		return isValidThumb(d.read16(localPC+2)) &&
			isValidThumb(d.read16(localPC+4)) &&
			isValidThumb(d.read16(localPC+6))
	}
	return false
}

func (d *Detector) evaluateStep2(regs [15]uint32) bool {
	return d.savedRegs == regs
}

func (d *Detector) evaluateLoop(currentPC, newJumpPC uint32, regs [15]uint32) {
	switch d.step {
	case step1:
		if d.evaluateStep1(currentPC, newJumpPC, regs) {
			d.savedRegs = regs
			d.step = step2
		} else {
			d.step = stepInvalid
		}

	case step2:
		if d.evaluateStep2(regs) {
			if d.eventChanged {
				d.eventChanged = false
				d.step = step2
			} else {
				d.inWaitloop = true
				d.step = step1
			}
		} else {
			d.step = stepInvalid
		}

	case stepInvalid:
	}
}

// OnThumbLoop is called on every taken backward Thumb conditional branch.
// regs is the register file snapshot (R0-R14) at the moment of the branch.
func (d *Detector) OnThumbLoop(currentPC, newJumpPC uint32, regs [15]uint32) {
	if !d.enabled {
		return
	}
	if d.pc != newJumpPC {
		d.pc = newJumpPC
		d.step = step1
	}
	d.evaluateLoop(currentPC, newJumpPC, regs)
}

// OnEventChange is called whenever an IRQ fires, a DMA transfer touches
// [addrStart, addrEnd), or an I/O register write lands on addrStart — any
// of which may invalidate whatever condition the loop was polling for.
func (d *Detector) OnEventChange(event Event, addrStart, addrEnd uint32) {
	if !d.inWaitloop {
		d.eventChanged = true
		return
	}

	switch event {
	case EventIRQ:
		d.inWaitloop = false
	case EventDMA:
		if addrStart < addrEnd {
			if d.pollAddress >= addrStart && d.pollAddress <= addrEnd {
				d.inWaitloop = false
			}
		} else {
			if d.pollAddress >= addrEnd && d.pollAddress <= addrStart {
				d.inWaitloop = false
			}
		}
	case EventIO:
		if addrStart == d.pollAddress {
			d.inWaitloop = false
		}
	}
}
