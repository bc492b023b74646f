package io

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GoBA/internal/state"
)

func TestDefaultAccessIsReadWriteAll(t *testing.T) {
	r := NewRegs()

	changed, ok := r.Write8(0x10, 0xAB)
	assert.True(t, ok)
	assert.True(t, changed)

	value, ok := r.Read8(0x10)
	assert.True(t, ok)
	assert.EqualValues(t, 0xAB, value)
}

func TestDescribeReadOnlyDropsWrites(t *testing.T) {
	r := NewRegs()
	r.Describe(0x20, AccessRO, 0)

	changed, ok := r.Write8(0x20, 0xFF)
	assert.False(t, ok)
	assert.False(t, changed)

	value, ok := r.Read8(0x20)
	assert.True(t, ok)
	assert.EqualValues(t, 0, value)
}

func TestDescribeWriteOnlyHidesReads(t *testing.T) {
	r := NewRegs()
	r.Describe(0x30, AccessWO, 0xFF)

	_, ok := r.Write8(0x30, 0x55)
	assert.True(t, ok)

	_, ok = r.Read8(0x30)
	assert.False(t, ok, "a write-only offset must report ok=false so the caller applies open-bus")
}

func TestWriteMaskOnlyStoresMaskedBits(t *testing.T) {
	r := NewRegs()
	r.Describe(0x40, AccessRW, 0x0F)

	r.Write8(0x40, 0xFF)
	value, _ := r.Read8(0x40)
	assert.EqualValues(t, 0x0F, value, "bits outside the write mask must not be stored")
}

func TestWriteReportsChangedOnlyOnActualChange(t *testing.T) {
	r := NewRegs()
	r.Write8(0x50, 0x11)

	changed, ok := r.Write8(0x50, 0x11)
	assert.True(t, ok)
	assert.False(t, changed, "writing the same value back must not report a change")
}

func TestRawAccessorsBypassAccessTable(t *testing.T) {
	r := NewRegs()
	r.Describe(0x60, AccessRO, 0)

	r.RawWrite8(0x60, 0x42)
	assert.EqualValues(t, 0x42, r.RawRead8(0x60), "raw accessors ignore the access-control layer entirely")

	r.RawWriteHalf(0x62, 0xBEEF)
	assert.EqualValues(t, 0xBEEF, r.RawReadHalf(0x62))

	r.RawWriteWord(0x64, 0xDEADBEEF)
	assert.EqualValues(t, 0xDEADBEEF, r.RawReadWord(0x64))
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	r := NewRegs()
	r.RawWrite8(0x10, 0x99)
	r.RawWriteWord(0x100, 0xCAFEBABE)

	w := state.NewWriter()
	r.SaveState(w)

	restored := NewRegs()
	restored.LoadState(state.NewReader(w.Finish()))

	assert.EqualValues(t, 0x99, restored.RawRead8(0x10))
	assert.EqualValues(t, 0xCAFEBABE, restored.RawReadWord(0x100))
}
