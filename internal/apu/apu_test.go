package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDMA struct {
	emptied []int
}

func (f *fakeDMA) OnCntWrite(channel int) {}
func (f *fakeDMA) OnHBlank()              {}
func (f *fakeDMA) OnVBlank()              {}
func (f *fakeDMA) OnFIFOEmpty(fifo int)   { f.emptied = append(f.emptied, fifo) }
func (f *fakeDMA) OnVideoCapture()        {}
func (f *fakeDMA) EEPROMWidthHint() int   { return 0 }

func TestFIFODrainRequestsRefillWhenEmpty(t *testing.T) {
	dma := &fakeDMA{}
	c := New(dma)

	c.OnFIFOWrite32(0, 0x04030201)

	for i := 0; i < 4; i++ {
		c.OnTimerOverflow(0)
	}

	assert.Contains(t, dma.emptied, 0)
}

func TestSampleCallbackReceivesBothChannels(t *testing.T) {
	dma := &fakeDMA{}
	c := New(dma)
	c.SetTimerRoute(1, true) // FIFO B routed from timer 1

	var gotA, gotB int8
	var calls int
	c.SetSampleCallback(func(a, b int8) {
		gotA, gotB = a, b
		calls++
	})

	c.OnFIFOWrite32(0, 0x00000005)
	c.OnFIFOWrite32(1, 0x00000009)

	c.OnTimerOverflow(0)
	assert.EqualValues(t, 5, gotA)
	assert.EqualValues(t, 0, gotB)

	c.OnTimerOverflow(1)
	assert.EqualValues(t, 9, gotB)
	assert.Equal(t, 2, calls)
}
