package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoBA/internal/state"
)

func TestDetectTypeFromSignature(t *testing.T) {
	cases := []struct {
		sig  string
		want Type
	}{
		{"SRAM_V110", TypeSRAM},
		{"EEPROM_V120", TypeEEPROM8K},
		{"FLASH_V130", TypeFlash64},
		{"FLASH512_V130", TypeFlash64},
		{"FLASH1M_V103", TypeFlash128},
	}
	for _, c := range cases {
		rom := make([]byte, 0x1000)
		copy(rom[0x200:], c.sig)
		assert.Equal(t, c.want, DetectType(rom), "signature %q", c.sig)
	}

	assert.Equal(t, TypeNone, DetectType(make([]byte, 0x1000)))
}

func TestSaveStateLoadStateDispatchesPerVariant(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeSRAM, TypeEEPROM512, TypeEEPROM8K, TypeFlash64, TypeFlash128} {
		bk := New(typ, fixedWidthHint{6})

		w := state.NewWriter()
		SaveState(w, typ, bk)

		gotType, gotBk := LoadState(state.NewReader(w.Finish()), fixedWidthHint{6})
		require.Equal(t, typ, gotType)
		assert.IsType(t, bk, gotBk)
	}
}

func TestSaveStateRoundTripPreservesSRAMContent(t *testing.T) {
	bk := New(TypeSRAM, nil)
	bk.Write(3, 0x7A)

	w := state.NewWriter()
	SaveState(w, TypeSRAM, bk)

	typ, restored := LoadState(state.NewReader(w.Finish()), nil)
	require.Equal(t, TypeSRAM, typ)
	assert.EqualValues(t, 0x7A, restored.Read(3))
}
