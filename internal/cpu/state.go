package cpu

import "GoBA/internal/state"

// SaveState writes every banked register regardless of which mode is
// current (spec.md §6's cpu section) — GetReg/SetReg only expose the
// current-mode view, so this walks the Registers struct directly rather
// than going through them.
func (c *CPU) SaveState(w *state.Writer) {
	r := c.registers
	for _, v := range r.R {
		w.U32(v)
	}
	w.U32(r.SP_usr)
	w.U32(r.LR_usr)
	w.U32(r.SP_svc)
	w.U32(r.LR_svc)
	w.U32(r.SP_abt)
	w.U32(r.LR_abt)
	w.U32(r.SP_und)
	w.U32(r.LR_und)
	w.U32(r.SP_irq)
	w.U32(r.LR_irq)
	w.U32(r.R8_fiq)
	w.U32(r.R9_fiq)
	w.U32(r.R10_fiq)
	w.U32(r.R11_fiq)
	w.U32(r.R12_fiq)
	w.U32(r.SP_fiq)
	w.U32(r.LR_fiq)
	w.U32(r.PC)
	w.U32(r.CPSR)
	w.U32(r.SPSR_svc)
	w.U32(r.SPSR_abt)
	w.U32(r.SPSR_und)
	w.U32(r.SPSR_irq)
	w.U32(r.SPSR_fiq)
}

func (c *CPU) LoadState(r *state.Reader) {
	regs := c.registers
	for i := range regs.R {
		regs.R[i] = r.U32()
	}
	regs.SP_usr = r.U32()
	regs.LR_usr = r.U32()
	regs.SP_svc = r.U32()
	regs.LR_svc = r.U32()
	regs.SP_abt = r.U32()
	regs.LR_abt = r.U32()
	regs.SP_und = r.U32()
	regs.LR_und = r.U32()
	regs.SP_irq = r.U32()
	regs.LR_irq = r.U32()
	regs.R8_fiq = r.U32()
	regs.R9_fiq = r.U32()
	regs.R10_fiq = r.U32()
	regs.R11_fiq = r.U32()
	regs.R12_fiq = r.U32()
	regs.SP_fiq = r.U32()
	regs.LR_fiq = r.U32()
	regs.PC = r.U32()
	regs.CPSR = r.U32()
	regs.SPSR_svc = r.U32()
	regs.SPSR_abt = r.U32()
	regs.SPSR_und = r.U32()
	regs.SPSR_irq = r.U32()
	regs.SPSR_fiq = r.U32()
	regs.currentMode = regs.GetMode()
}
