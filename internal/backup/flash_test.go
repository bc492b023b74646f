package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlashIDProbe128K(t *testing.T) {
	f := NewFlash(Flash128)

	f.Write(0x0E005555, 0xAA)
	f.Write(0x0E002AAA, 0x55)
	f.Write(0x0E005555, cmdChipIDEnter)

	assert.EqualValues(t, 0x62, f.Read(0x0E000000))
	assert.EqualValues(t, 0x13, f.Read(0x0E000001))

	f.Write(0x0E005555, 0xAA)
	f.Write(0x0E002AAA, 0x55)
	f.Write(0x0E005555, cmdChipIDExit)

	assert.EqualValues(t, f.data[0], f.Read(0x0E000000), "exiting ID mode returns raw stored data again")
}

func TestFlashIDProbe64K(t *testing.T) {
	f := NewFlash(Flash64)

	f.Write(0x0E005555, 0xAA)
	f.Write(0x0E002AAA, 0x55)
	f.Write(0x0E005555, cmdChipIDEnter)

	assert.EqualValues(t, 0x32, f.Read(0x0E000000))
	assert.EqualValues(t, 0x1B, f.Read(0x0E000001))
}

func TestFlashWriteByte(t *testing.T) {
	f := NewFlash(Flash64)

	f.Write(0x0E005555, 0xAA)
	f.Write(0x0E002AAA, 0x55)
	f.Write(0x0E005555, cmdWriteByte)
	f.Write(0x0E000010, 0x42)

	assert.EqualValues(t, 0x42, f.Read(0x0E000010))
	assert.True(t, f.Dirty())
}

func TestFlashEraseAll(t *testing.T) {
	f := NewFlash(Flash64)
	f.data[0x100] = 0x11

	f.Write(0x0E005555, 0xAA)
	f.Write(0x0E002AAA, 0x55)
	f.Write(0x0E005555, cmdErasePrepare)
	f.Write(0x0E005555, 0xAA)
	f.Write(0x0E002AAA, 0x55)
	f.Write(0x0E005555, cmdEraseAll)

	assert.EqualValues(t, 0xFF, f.Read(0x0E000100))
}

func TestFlashBankSelect(t *testing.T) {
	f := NewFlash(Flash128)
	f.data[0x10000] = 0x7A

	f.Write(0x0E005555, 0xAA)
	f.Write(0x0E002AAA, 0x55)
	f.Write(0x0E005555, cmdSetBank)
	f.Write(0x0E000000, 1)

	assert.EqualValues(t, 0x7A, f.Read(0x0E000000))
}

func TestFlashLoadSaveRoundTrip(t *testing.T) {
	f := NewFlash(Flash64)
	image := make([]byte, int(Flash64))
	image[5] = 0x99
	assert.NoError(t, f.Load(image))
	assert.False(t, f.Dirty())

	saved := f.Save()
	assert.Equal(t, image, saved)
}
