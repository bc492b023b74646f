package backup

import (
	"GoBA/internal/interfaces"
	"GoBA/internal/state"
)

// None is the backup variant for ROMs with no detected save chip: reads
// return open bus (handled by the bus, not here) and writes are dropped.
type None struct{}

var _ interfaces.Backup = (*None)(nil)

func NewNone() *None { return &None{} }

func (n *None) Read(addr uint32) uint8       { return 0 }
func (n *None) Write(addr uint32, value uint8) {}
func (n *None) Load(data []byte) error        { return nil }
func (n *None) Save() []byte                  { return nil }
func (n *None) Dirty() bool                   { return false }

func (n *None) SaveState(w *state.Writer) {}
func (n *None) LoadState(r *state.Reader) {}
