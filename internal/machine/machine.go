// Package machine assembles every leaf component into the single owning
// container spec.md §9 calls for ("the machine"): subsystems reach each
// other only through the internal/interfaces contracts passed in at
// construction, never through a back-pointer to Machine itself, so the
// CPU-bus-DMA-scheduler reference cycle spec.md §9 warns about never
// actually exists as a Go reference cycle. Machine itself is the thing that
// implements spec.md §6's external interface (reset/load_rom/load_bios/
// load_save/get_save/save_state/load_state/set_keys/run).
package machine

import (
	"fmt"

	"GoBA/internal/apu"
	"GoBA/internal/backup"
	"GoBA/internal/bus"
	"GoBA/internal/cpu"
	"GoBA/internal/dma"
	"GoBA/internal/interfaces"
	"GoBA/internal/interrupt"
	"GoBA/internal/io"
	"GoBA/internal/joypad"
	"GoBA/internal/log"
	"GoBA/internal/memory"
	"GoBA/internal/ppu"
	"GoBA/internal/scheduler"
	"GoBA/internal/state"
	"GoBA/internal/timer"
	"GoBA/internal/waitloop"
)

// maxROMSize rejects a load_rom call outright (spec.md §7: "Rom oversized:
// more than 32 MiB; Reject at load_rom").
const maxROMSize = 32 * 1024 * 1024

// Machine owns every subsystem and drives the fetch/decode/execute loop
// against the scheduler (spec.md §2's control-flow summary).
type Machine struct {
	sched *scheduler.Scheduler

	bios  *memory.BIOS
	ewram *memory.EWRAM
	iwram *memory.IWRAM
	regs  *io.Regs
	bus   *bus.Bus

	irqs     *interrupt.Controller
	dmaCtrl  *dma.Controller
	timers   *timer.Controller
	apuCtrl  *apu.Controller
	ppuCtrl  *ppu.PPU
	keys     *joypad.Controller
	wait     *waitloop.Detector
	cpu      *cpu.CPU

	backupType backup.Type
	backupInst interfaces.Backup

	log log.Func
}

// New wires every subsystem in the two-phase order Bus's cyclic-dependency
// comment documents: Bus first with no siblings, then DMA/timer with a nil
// AudioSink, then APU (which needs DMA to exist), then the AudioSink
// back-fill, then PPU, then Bus.Wire, then the waitloop detector and
// finally the CPU itself.
func New() *Machine {
	m := &Machine{
		sched: scheduler.New(),
		bios:  memory.NewBIOS(),
		ewram: memory.NewEWRAM(),
		iwram: memory.NewIWRAM(),
		regs:  io.NewRegs(),
		log:   log.Default(),
	}

	m.bus = bus.New(m.bios, m.ewram, m.iwram, m.regs, m.sched)
	m.irqs = interrupt.New()

	m.dmaCtrl = dma.New(m.regs, m.bus, m.sched, m.irqs, nil, m.isEEPROMActive)
	m.timers = timer.New(m.regs, m.sched, m.irqs, nil)
	m.apuCtrl = apu.New(m.dmaCtrl)
	m.dmaCtrl.SetAudioSink(m.apuCtrl)
	m.timers.SetAudioSink(m.apuCtrl)

	m.ppuCtrl = ppu.New(m.regs, m.sched, m.irqs, m.dmaCtrl)
	m.keys = joypad.New(m.irqs)

	m.bus.Wire(m.ppuCtrl, m.apuCtrl, m.dmaCtrl, m.timers, m.irqs, m.keys)

	// m.wait tracks candidate idle loops via CPU.Step's OnThumbLoop calls
	// (spec.md §4.9), but Run deliberately never calls its FastForward: that
	// is only safe once every event that could perturb a polled address
	// (IRQ raise, DMA write, I/O write) reports back through OnEventChange,
	// and none of bus/dma/interrupt currently holds a reference to call it.
	// Without that wiring, fast-forwarding past a loop the detector thinks
	// is safe could skip straight past the write that was supposed to end
	// it. spec.md §9 calls this optimization optional-but-recommended and
	// says the core is still correct without it, just slower on heavy-
	// polling games — the detector stays built and tested, just not yet
	// load-bearing in Run.
	m.wait = waitloop.New(m.sched)
	m.wait.Reset(true)

	m.cpu = cpu.NewCPU(m.bus, m.irqs, m.bus)
	m.cpu.SetWaitloop(m.wait)

	m.backupType = backup.TypeNone
	m.backupInst = backup.NewNone()
	m.bus.SetBackup(m.backupInst, false)

	return m
}

// SetLogFunc redirects the diagnostic stream (spec.md §6's log_callback).
func (m *Machine) SetLogFunc(f log.Func) {
	if f == nil {
		f = log.Default()
	}
	m.log = f
}

// SetVBlankCallback/SetHBlankCallback/SetSampleCallback wire spec.md §6's
// remaining egress hooks straight through to the subsystems that own them.
func (m *Machine) SetVBlankCallback(cb func(vcount uint16)) { m.ppuCtrl.SetVBlankCallback(cb) }
func (m *Machine) SetHBlankCallback(cb func(vcount uint16)) { m.ppuCtrl.SetHBlankCallback(cb) }
func (m *Machine) SetSampleCallback(cb func(fifoA, fifoB int8)) {
	m.apuCtrl.SetSampleCallback(cb)
}

func (m *Machine) isEEPROMActive() bool { return m.bus.IsEEPROMActive() }

// Reset clears RAM and resets the CPU, PPU, interrupt, timer, DMA, joypad and
// waitloop state (spec.md §6); the scheduler's cycle counter keeps its
// value. The CPU
// always resets to the BIOS entry point in Supervisor mode (cpu.Reset's own
// behavior) rather than a BIOS-skip shortcut: spec.md §6 allows either
// reading, and running the real BIOS handoff is the one that exercises the
// whole reset vector path instead of special-casing it away.
func (m *Machine) Reset() {
	m.ewram.Clear()
	m.iwram.Clear()
	m.bus.ClearRAM()
	m.bus.Reset()
	m.timers.Reset()
	m.dmaCtrl.Reset()
	m.keys.Reset()
	m.wait.Reset(true)
	m.cpu.Reset()
}

// LoadROM installs the cartridge image, classifying its backup variant by
// signature scan (spec.md §6's load_rom contract).
func (m *Machine) LoadROM(rom []byte) error {
	if len(rom) > maxROMSize {
		return fmt.Errorf("machine: ROM is %d bytes, exceeds %d byte maximum", len(rom), maxROMSize)
	}

	m.bus.SetROM(rom)
	m.wait.SetROM(rom)

	m.backupType = backup.DetectType(rom)
	m.backupInst = backup.New(m.backupType, m.dmaCtrl)
	isEEPROM := m.backupType == backup.TypeEEPROM512 || m.backupType == backup.TypeEEPROM8K
	m.bus.SetBackup(m.backupInst, isEEPROM)

	m.log("machine", log.LevelDebug, fmt.Sprintf("loaded ROM (%d bytes), backup type %d", len(rom), m.backupType))
	return nil
}

// LoadBIOS installs the 16 KiB BIOS image (spec.md §6).
func (m *Machine) LoadBIOS(data []byte) error {
	if err := m.bios.Load(data); err != nil {
		return fmt.Errorf("machine: load_bios: %w", err)
	}
	return nil
}

// LoadSave initializes the active backup variant from persisted bytes
// (spec.md §6). A size mismatch fails the call and leaves the backup
// untouched (spec.md §7's "Bad backup-size load" policy) since every
// variant's own Load validates length before mutating its storage.
func (m *Machine) LoadSave(data []byte) error {
	if err := m.backupInst.Load(data); err != nil {
		return fmt.Errorf("machine: load_save: %w", err)
	}
	return nil
}

// GetSave returns the active backup's persisted bytes, empty if the variant
// is None (spec.md §6).
func (m *Machine) GetSave() []byte {
	return m.backupInst.Save()
}

// SetKeys updates REG_KEYINPUT, possibly raising the keypad IRQ (spec.md §6).
func (m *Machine) SetKeys(mask uint16, down bool) {
	m.keys.SetKeys(mask, down)
}

// Run executes until cycles have been billed or a frame completes, whichever
// comes first, and reports how many cycles were actually consumed. Per-
// instruction cycle costs beyond a flat per-step charge are explicitly out
// of scope (spec.md §1's "perfect cycle accuracy at sub-instruction
// granularity" non-goal); each CPU step bills one cycle to the scheduler,
// the same unit DMA's special-mode burst already bills per word
// (internal/dma's run), so the Σcycles-billed invariant (spec.md §8) holds
// by construction rather than needing a reconciliation pass.
func (m *Machine) Run(cycles int64) int64 {
	m.ppuCtrl.ResetFrameReady()
	var billed int64
	for billed < cycles {
		m.cpu.Step()
		m.bus.Tick(1)
		billed++

		if m.ppuCtrl.IsFrameReady() {
			break
		}
	}
	return billed
}

// SaveState snapshots every subsystem into spec.md §6's versioned container:
// a fixed header wrapping the flat concatenation of scheduler, cpu, ppu,
// apu, mem (ewram+iwram+io regs+bus-owned PRAM/VRAM/OAM), dma, timer and
// backup sections, each subsystem's own SaveState writing its own section
// in the fixed order below.
func (m *Machine) SaveState() []byte {
	w := state.NewWriter()

	m.sched.SaveState(w)
	m.cpu.SaveState(w)
	m.ppuCtrl.SaveState(w)
	m.apuCtrl.SaveState(w)

	m.ewram.SaveState(w)
	m.iwram.SaveState(w)
	m.regs.SaveState(w)
	m.bus.SaveState(w)

	m.dmaCtrl.SaveState(w)
	m.timers.SaveState(w)

	backup.SaveState(w, m.backupType, m.backupInst)

	return state.Encode(w.Finish())
}

// LoadState restores a snapshot produced by SaveState. A corrupt or
// mismatched-version file fails the call with core state left entirely
// unchanged (spec.md §7: "Fail load_state; core state unchanged") — the
// header/CRC check in state.Decode runs before any subsystem's LoadState is
// ever invoked, so a bad file never has the chance to mutate anything.
func (m *Machine) LoadState(data []byte) error {
	body, err := state.Decode(data)
	if err != nil {
		return fmt.Errorf("machine: load_state: %w", err)
	}

	r := state.NewReader(body)

	m.sched.LoadState(r)
	m.cpu.LoadState(r)
	ppuRemaining := m.ppuCtrl.LoadState(r)
	m.apuCtrl.LoadState(r)

	m.ewram.LoadState(r)
	m.iwram.LoadState(r)
	m.regs.LoadState(r)
	m.bus.LoadState(r)

	m.dmaCtrl.LoadState(r)
	m.timers.LoadState(r)

	typ, bk := backup.LoadState(r, m.dmaCtrl)
	m.backupType = typ
	m.backupInst = bk
	isEEPROM := typ == backup.TypeEEPROM512 || typ == backup.TypeEEPROM8K
	m.bus.SetBackup(bk, isEEPROM)

	// Re-derive the pending scheduler events LoadState's flat copy couldn't
	// carry (spec.md §9: scheduler callbacks are closures, not data).
	m.ppuCtrl.Resync(ppuRemaining)
	m.timers.Resync()
	m.wait.Reset(m.wait.IsEnabled())

	return nil
}
