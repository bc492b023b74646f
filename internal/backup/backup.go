// Package backup implements the cartridge backup dispatcher (spec.md §4.8):
// a tagged variant over None/SRAM/EEPROM/Flash, selected by scanning the ROM
// image for its signature string (spec.md §6's load_rom contract). Grounded
// on _examples/original_source/src/core/backup/backup.hpp's union-of-variants
// shape, expressed in Go as an interface plus one struct per variant instead
// of a tagged union.
package backup

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/state"
)

// Type names which backup variant a ROM declared via its signature string.
type Type int

const (
	TypeNone Type = iota
	TypeSRAM
	TypeEEPROM512
	TypeEEPROM8K
	TypeFlash64
	TypeFlash128
)

var signatures = []struct {
	text string
	typ  Type
}{
	{"EEPROM_V", TypeEEPROM8K}, // width resolved later from the DMA hint
	{"SRAM_V", TypeSRAM},
	{"FLASH1M_V", TypeFlash128},
	{"FLASH512_V", TypeFlash64},
	{"FLASH_V", TypeFlash64},
}

// DetectType scans rom for one of the known save-chip signature strings
// (spec.md §6: "EEPROM_V", "SRAM_V", "FLASH_V", "FLASH512_V", "FLASH1M_V"),
// returning TypeNone if nothing matches.
func DetectType(rom []byte) Type {
	for _, sig := range signatures {
		if containsASCII(rom, sig.text) {
			return sig.typ
		}
	}
	return TypeNone
}

func containsASCII(haystack []byte, needle string) bool {
	n := len(needle)
	if n == 0 || len(haystack) < n {
		return false
	}
	for i := 0; i+n <= len(haystack); i++ {
		match := true
		for j := 0; j < n; j++ {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// widthHinter narrows internal/dma's EEPROMWidthHint so EEPROM construction
// doesn't need to import internal/dma.
type widthHinter interface {
	EEPROMWidthHint() int
}

// New constructs the concrete backup for the given variant. dma supplies the
// address-width hint EEPROM needs (spec.md §4.8, SPEC_FULL.md §C.3); it is
// ignored for non-EEPROM variants.
func New(typ Type, dma widthHinter) interfaces.Backup {
	switch typ {
	case TypeSRAM:
		return NewSRAM()
	case TypeEEPROM512:
		return NewEEPROM(64, dma)
	case TypeEEPROM8K:
		return NewEEPROM(1024, dma)
	case TypeFlash64:
		return NewFlash(Flash64)
	case TypeFlash128:
		return NewFlash(Flash128)
	default:
		return NewNone()
	}
}

// SaveState writes the variant tag followed by that variant's own payload
// (spec.md §6's "backup variant tag + payload"). Expressed as a type switch
// over the known concrete variants rather than adding SaveState/LoadState to
// interfaces.Backup itself, since their payload shapes are entirely
// variant-specific and every caller already knows the concrete type it built
// via New.
func SaveState(w *state.Writer, typ Type, bk interfaces.Backup) {
	w.U8(uint8(typ))
	switch v := bk.(type) {
	case *SRAM:
		v.SaveState(w)
	case *EEPROM:
		v.SaveState(w)
	case *Flash:
		v.SaveState(w)
	case *None:
		v.SaveState(w)
	}
}

// LoadState reads the tag, constructs the matching variant (dma supplies the
// EEPROM address-width hint New already requires), loads its payload, and
// returns both.
func LoadState(r *state.Reader, dma widthHinter) (Type, interfaces.Backup) {
	typ := Type(r.U8())
	bk := New(typ, dma)
	switch v := bk.(type) {
	case *SRAM:
		v.LoadState(r)
	case *EEPROM:
		v.LoadState(r)
	case *Flash:
		v.LoadState(r)
	case *None:
		v.LoadState(r)
	}
	return typ, bk
}
