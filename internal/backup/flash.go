package backup

import (
	"fmt"

	"GoBA/internal/interfaces"
	"GoBA/internal/state"
)

// FlashType names the two cartridge flash chip sizes (spec.md §4.8).
type FlashType uint32

const (
	Flash64  FlashType = 64 * 1024
	Flash128 FlashType = 128 * 1024
)

type flashState uint8

const (
	flashReady flashState = iota
	flashCmd1
	flashCmd2
)

const (
	cmdChipIDEnter  = 0x90
	cmdChipIDExit   = 0xF0
	cmdErasePrepare = 0x80
	cmdEraseAll     = 0x10
	cmdEraseSector  = 0x30
	cmdWriteByte    = 0xA0
	cmdSetBank      = 0xB0
)

// Flash is the command-sequence state machine gated by the two magic
// handshake writes (0x5555=0xAA, 0x2AAA=0x55) described in spec.md §4.8,
// with addr/mask addressing and manufacturer/device ID byte values grounded
// on _examples/original_source/src/core/backup/flash.cpp (SPEC_FULL.md §C.4).
// The handshake dispatch and ID-mode gating themselves are built from
// spec.md's prose: the retrieved flash.cpp fragment only shows unconditional
// reads/writes, not the command interception, so there was nothing to copy.
type Flash struct {
	data [128 * 1024]byte
	mask uint32
	bank uint32
	typ  FlashType

	state      flashState
	idMode     bool
	eraseArmed bool // saw 0x80, waiting for 0x10 or 0x30
	writeArmed bool // saw 0xA0 or 0xB0, next write is data/bank not a command
	bankSelect bool // the armed write selects the bank rather than data

	dirty bool
}

var _ interfaces.Backup = (*Flash)(nil)

func NewFlash(typ FlashType) *Flash {
	return &Flash{typ: typ, mask: uint32(typ) - 1, state: flashReady}
}

func (f *Flash) manufacturerID() uint8 {
	if f.typ == Flash128 {
		return 0x62
	}
	return 0x32
}

func (f *Flash) deviceID() uint8 {
	if f.typ == Flash128 {
		return 0x13
	}
	return 0x1B
}

func (f *Flash) Read(addr uint32) uint8 {
	local := addr & 0xFFFF
	if f.idMode {
		switch local {
		case 0x0000:
			return f.manufacturerID()
		case 0x0001:
			return f.deviceID()
		}
	}
	return f.data[(f.bank+local)&f.mask]
}

func (f *Flash) Write(addr uint32, value uint8) {
	local := addr & 0xFFFF

	if f.writeArmed {
		f.writeArmed = false
		if f.bankSelect {
			f.bankSelect = false
			if f.typ == Flash128 {
				f.bank = uint32(value&1) << 16
			}
		} else {
			f.data[(f.bank+local)&f.mask] = value
			f.dirty = true
		}
		f.state = flashReady
		return
	}

	switch f.state {
	case flashReady:
		if local == 0x5555 && value == 0xAA {
			f.state = flashCmd1
		}
	case flashCmd1:
		if local == 0x2AAA && value == 0x55 {
			f.state = flashCmd2
		} else {
			f.state = flashReady
		}
	case flashCmd2:
		f.state = flashReady
		f.applyCommand(local, value)
	}
}

func (f *Flash) applyCommand(local uint32, cmd uint8) {
	wasEraseArmed := f.eraseArmed
	f.eraseArmed = false

	switch cmd {
	case cmdChipIDEnter:
		f.idMode = true
	case cmdChipIDExit:
		f.idMode = false
	case cmdErasePrepare:
		f.eraseArmed = true
	case cmdEraseAll:
		if wasEraseArmed {
			for i := range f.data {
				f.data[i] = 0xFF
			}
			f.dirty = true
		}
	case cmdEraseSector:
		if wasEraseArmed {
			sectorBase := (f.bank + local) & f.mask &^ 0xFFF
			for i := uint32(0); i < 0x1000; i++ {
				f.data[(sectorBase+i)&f.mask] = 0xFF
			}
			f.dirty = true
		}
	case cmdWriteByte:
		f.writeArmed = true
	case cmdSetBank:
		if f.typ == Flash128 {
			f.writeArmed = true
			f.bankSelect = true
		}
	}
}

func (f *Flash) Load(data []byte) error {
	switch FlashType(len(data)) {
	case Flash64, Flash128:
		f.typ = FlashType(len(data))
		f.mask = uint32(f.typ) - 1
	default:
		return fmt.Errorf("backup: flash image must be %d or %d bytes, got %d", Flash64, Flash128, len(data))
	}
	copy(f.data[:], data)
	f.bank = 0
	f.state = flashReady
	f.idMode = false
	f.dirty = false
	return nil
}

func (f *Flash) Save() []byte {
	size := int(f.typ)
	out := make([]byte, size)
	copy(out, f.data[:size])
	f.dirty = false
	return out
}

func (f *Flash) Dirty() bool { return f.dirty }

// SaveState captures the full (always 128 KiB-backed) data array plus the
// command-sequence state machine (spec.md §3: "bank index, command state
// machine ... manufacturer/device ID pair"), without Save()/Load()'s side
// effect of clearing dirty.
func (f *Flash) SaveState(w *state.Writer) {
	w.Bytes(f.data[:])
	w.U32(f.mask)
	w.U32(f.bank)
	w.U32(uint32(f.typ))
	w.U8(uint8(f.state))
	w.Bool(f.idMode)
	w.Bool(f.eraseArmed)
	w.Bool(f.writeArmed)
	w.Bool(f.bankSelect)
	w.Bool(f.dirty)
}

func (f *Flash) LoadState(r *state.Reader) {
	copy(f.data[:], r.Bytes(len(f.data)))
	f.mask = r.U32()
	f.bank = r.U32()
	f.typ = FlashType(r.U32())
	f.state = flashState(r.U8())
	f.idMode = r.Bool()
	f.eraseArmed = r.Bool()
	f.writeArmed = r.Bool()
	f.bankSelect = r.Bool()
	f.dirty = r.Bool()
}
