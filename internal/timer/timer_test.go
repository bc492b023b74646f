package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GoBA/internal/interfaces"
	"GoBA/internal/interrupt"
	"GoBA/internal/io"
	"GoBA/internal/scheduler"
)

func TestTimerCascadeOverflow(t *testing.T) {
	regs := io.NewRegs()
	sched := scheduler.New()
	irqs := interrupt.New()
	irqs.WriteIE(0xFFFF)
	tc := New(regs, sched, irqs, nil)

	regs.RawWriteHalf(io.TM0CNT_L, 0xFFFE)
	regs.RawWriteHalf(io.TM0CNT_H, 0x80) // enable, prescaler /1
	tc.OnCntWrite(0)

	regs.RawWriteHalf(io.TM1CNT_L, 0xFFFF)
	regs.RawWriteHalf(io.TM1CNT_H, 0xC4) // enable, IRQ, cascade
	tc.OnCntWrite(1)

	sched.Advance(8) // 4 overflows of timer 0 at prescaler 1, reload 0xFFFE

	assert.EqualValues(t, 0xFFFF, tc.ReadCounter(1))
	assert.NotZero(t, irqs.ReadIF()&interfaces.IRQTimer1)
}

func TestTimerFreeRunningInterpolation(t *testing.T) {
	regs := io.NewRegs()
	sched := scheduler.New()
	irqs := interrupt.New()
	tc := New(regs, sched, irqs, nil)

	regs.RawWriteHalf(io.TM0CNT_L, 0)
	regs.RawWriteHalf(io.TM0CNT_H, 0x80) // enable, prescaler /1
	tc.OnCntWrite(0)

	sched.Advance(10)
	assert.EqualValues(t, 10, tc.ReadCounter(0))
}

func TestTimerDisableFreezesCounter(t *testing.T) {
	regs := io.NewRegs()
	sched := scheduler.New()
	irqs := interrupt.New()
	tc := New(regs, sched, irqs, nil)

	regs.RawWriteHalf(io.TM0CNT_L, 0)
	regs.RawWriteHalf(io.TM0CNT_H, 0x80)
	tc.OnCntWrite(0)
	sched.Advance(5)

	regs.RawWriteHalf(io.TM0CNT_H, 0x00)
	tc.OnCntWrite(0)
	sched.Advance(100)

	assert.EqualValues(t, 5, tc.ReadCounter(0))
}
