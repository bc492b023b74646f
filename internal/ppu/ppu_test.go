package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GoBA/internal/interrupt"
	"GoBA/internal/io"
	"GoBA/internal/scheduler"
)

type fakeDMA struct {
	hblanks, vblanks, videoCaptures int
}

func (f *fakeDMA) OnCntWrite(channel int) {}
func (f *fakeDMA) OnHBlank()              { f.hblanks++ }
func (f *fakeDMA) OnVBlank()              { f.vblanks++ }
func (f *fakeDMA) OnFIFOEmpty(fifo int)   {}
func (f *fakeDMA) OnVideoCapture()        { f.videoCaptures++ }
func (f *fakeDMA) EEPROMWidthHint() int   { return 0 }

func newTestPPU() (*PPU, *fakeDMA, *scheduler.Scheduler) {
	regs := io.NewRegs()
	sched := scheduler.New()
	irqs := interrupt.New()
	dma := &fakeDMA{}
	p := New(regs, sched, irqs, dma)
	p.Reset()
	return p, dma, sched
}

func TestPPUEntersHBlankThenNextScanline(t *testing.T) {
	p, dma, sched := newTestPPU()

	sched.Advance(CyclesPerHDraw)
	assert.True(t, p.InHBlank())
	assert.EqualValues(t, 1, dma.hblanks)

	sched.Advance(CyclesPerHBlank)
	assert.False(t, p.InHBlank())
	assert.EqualValues(t, 1, p.VCount())
}

func TestPPUReachesVBlankAtScanline160(t *testing.T) {
	p, dma, sched := newTestPPU()

	for i := 0; i < VisibleScanlines; i++ {
		sched.Advance(CyclesPerScanline)
	}

	assert.EqualValues(t, VisibleScanlines, p.VCount())
	assert.True(t, p.IsFrameReady())
	assert.EqualValues(t, 1, dma.vblanks)
}

func TestPPUWrapsFrameAtScanline228(t *testing.T) {
	p, _, sched := newTestPPU()

	for i := 0; i < ScanlinesPerFrame; i++ {
		sched.Advance(CyclesPerScanline)
	}

	assert.EqualValues(t, 0, p.VCount())
}
