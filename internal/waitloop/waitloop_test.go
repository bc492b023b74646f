package waitloop

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"GoBA/internal/scheduler"
)

// buildLoopROM assembles the 3-instruction idle-loop shape step1 looks for:
// LDRH r0,[r1,r2]; CMP r0,#0; BEQ back (6 bytes of body, plus the branch
// itself is what the caller reports via currentPC/newJumpPC).
func buildLoopROM() []byte {
	rom := make([]byte, 0x100)
	// LDRH Rd=r0, Rb=r1, Ro=r2: 0101 H(1) S(0) 1 ro(3) rb(3) rd(3)
	ldrh := uint16(0b0101_1_0_1_010_001_000) // Ro=r2(010), Rb=r1(001), Rd=r0(000)
	binary.LittleEndian.PutUint16(rom[0:2], ldrh)
	cmpImm := uint16(0b001_01_000_00000000) // CMP r0, #0
	binary.LittleEndian.PutUint16(rom[2:4], cmpImm)
	return rom
}

func TestWaitloopDetectsRecurringPoll(t *testing.T) {
	sched := scheduler.New()
	d := New(sched)
	d.Reset(true)
	d.SetROM(buildLoopROM())

	currentPC := uint32(0x08000008)
	newJumpPC := uint32(0x08000000)
	regs := [15]uint32{1: 0x02000000, 2: 4}

	d.OnThumbLoop(currentPC, newJumpPC, regs) // step1 -> step2
	assert.False(t, d.IsInWaitloop())

	d.OnThumbLoop(currentPC, newJumpPC, regs) // step2, registers unchanged -> waitloop entered
	assert.True(t, d.IsInWaitloop())
}

func TestWaitloopExitsOnIRQ(t *testing.T) {
	sched := scheduler.New()
	d := New(sched)
	d.Reset(true)
	d.SetROM(buildLoopROM())

	regs := [15]uint32{1: 0x02000000, 2: 4}
	d.OnThumbLoop(0x08000008, 0x08000000, regs)
	d.OnThumbLoop(0x08000008, 0x08000000, regs)
	assert.True(t, d.IsInWaitloop())

	d.OnEventChange(EventIRQ, 0, 0)
	assert.False(t, d.IsInWaitloop())
}

func TestWaitloopDisabledNeverTriggers(t *testing.T) {
	sched := scheduler.New()
	d := New(sched)
	d.Reset(false)
	d.SetROM(buildLoopROM())

	regs := [15]uint32{1: 0x02000000, 2: 4}
	d.OnThumbLoop(0x08000008, 0x08000000, regs)
	d.OnThumbLoop(0x08000008, 0x08000000, regs)
	assert.False(t, d.IsInWaitloop())
}
