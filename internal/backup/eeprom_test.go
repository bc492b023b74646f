package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedWidthHint struct{ bits int }

func (f fixedWidthHint) EEPROMWidthHint() int { return f.bits }

func writeBits(e *EEPROM, value uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		e.Write(0, uint8((value>>uint(i))&1))
	}
}

func readBits(e *EEPROM, n int) uint64 {
	var out uint64
	for i := 0; i < n; i++ {
		out = (out << 1) | uint64(e.Read(0)&1)
	}
	return out
}

func TestEEPROMWriteThenRead(t *testing.T) {
	e := NewEEPROM(64, fixedWidthHint{6})

	// write request: "10", 6-bit address, 64-bit data, stop bit.
	writeBits(e, 0b10, 2)
	writeBits(e, 5, 6)
	writeBits(e, 0x1122334455667788, 64)
	writeBits(e, 0, 1)

	assert.Equal(t, eepromIdle, e.phase)
	assert.True(t, e.Dirty())

	// read request: "11", 6-bit address, stop bit.
	writeBits(e, 0b11, 2)
	writeBits(e, 5, 6)
	writeBits(e, 0, 1)

	dummy := e.Read(0)
	assert.EqualValues(t, 0, dummy)
	got := readBits(e, 64)
	assert.Equal(t, uint64(0x1122334455667788), got)
}

func TestEEPROMLoadSaveRoundTrip(t *testing.T) {
	e := NewEEPROM(1024, fixedWidthHint{14})
	image := make([]byte, 1024*8)
	image[10] = 0xAB
	assert.NoError(t, e.Load(image))
	assert.Equal(t, image, e.Save())
	assert.False(t, e.Dirty())
}
