package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoBA/internal/state"
)

func TestBIOSLoadRejectsWrongSize(t *testing.T) {
	b := NewBIOS()
	assert.Error(t, b.Load(make([]byte, 100)))
}

func TestBIOSReadWriteIsReadOnly(t *testing.T) {
	b := NewBIOS()
	img := make([]byte, BIOS_SIZE)
	img[4] = 0xAB
	require.NoError(t, b.Load(img))

	assert.EqualValues(t, 0xAB, b.Read8(BIOS_START+4))

	b.Write8(BIOS_START+4, 0xFF)
	assert.EqualValues(t, 0xAB, b.Read8(BIOS_START+4), "BIOS writes must be silently dropped")
}

func TestBIOSOpenBusBeforeLoad(t *testing.T) {
	b := NewBIOS()
	b.NoteFetch(0xDEADBEEF)

	assert.EqualValues(t, byte(0xDEADBEEF), b.Read8(BIOS_START))
	assert.EqualValues(t, uint32(0xDEADBEEF), b.ReadWord(BIOS_START))
}

func TestBIOSReadWordAssemblesLittleEndian(t *testing.T) {
	b := NewBIOS()
	img := make([]byte, BIOS_SIZE)
	img[0], img[1], img[2], img[3] = 0x11, 0x22, 0x33, 0x44
	require.NoError(t, b.Load(img))

	assert.EqualValues(t, 0x44332211, b.ReadWord(BIOS_START))
	assert.EqualValues(t, 0x2211, b.ReadHalfWord(BIOS_START))
}

func TestEWRAMMirrorsEvery256KiB(t *testing.T) {
	e := NewEWRAM()
	e.Write8(EWRAM_START+10, 0x55)
	assert.EqualValues(t, 0x55, e.Read8(EWRAM_START+10+EWRAM_SIZE))
}

func TestEWRAMWordReadWrite(t *testing.T) {
	e := NewEWRAM()
	e.WriteWord(EWRAM_START, 0xCAFEBABE)
	assert.EqualValues(t, 0xCAFEBABE, e.ReadWord(EWRAM_START))
}

func TestEWRAMClearZeroes(t *testing.T) {
	e := NewEWRAM()
	e.Write8(EWRAM_START, 0x77)
	e.Clear()
	assert.EqualValues(t, 0, e.Read8(EWRAM_START))
}

func TestEWRAMSaveLoadStateRoundTrip(t *testing.T) {
	e := NewEWRAM()
	e.Write8(EWRAM_START+5, 0x42)

	w := state.NewWriter()
	e.SaveState(w)

	restored := NewEWRAM()
	restored.LoadState(state.NewReader(w.Finish()))
	assert.EqualValues(t, 0x42, restored.Read8(EWRAM_START+5))
}

func TestIWRAMMirrorsEvery32KiB(t *testing.T) {
	i := NewIWRAM()
	i.Write8(IWRAM_START+3, 0x66)
	assert.EqualValues(t, 0x66, i.Read8(IWRAM_START+3+IWRAM_SIZE))
}

func TestIWRAMClearZeroes(t *testing.T) {
	i := NewIWRAM()
	i.Write8(IWRAM_START, 0x88)
	i.Clear()
	assert.EqualValues(t, 0, i.Read8(IWRAM_START))
}

func TestIWRAMSaveLoadStateRoundTrip(t *testing.T) {
	i := NewIWRAM()
	i.WriteWord(IWRAM_START, 0x01020304)

	w := state.NewWriter()
	i.SaveState(w)

	restored := NewIWRAM()
	restored.LoadState(state.NewReader(w.Finish()))
	assert.EqualValues(t, 0x01020304, restored.ReadWord(IWRAM_START))
}
