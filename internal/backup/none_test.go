package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GoBA/internal/state"
)

func TestNoneIsInert(t *testing.T) {
	n := NewNone()

	assert.EqualValues(t, 0, n.Read(0x123))
	assert.NotPanics(t, func() { n.Write(0x123, 0xFF) })
	assert.EqualValues(t, 0, n.Read(0x123), "None writes are dropped")

	assert.NoError(t, n.Load([]byte{1, 2, 3}))
	assert.Nil(t, n.Save())
	assert.False(t, n.Dirty())
}

func TestNoneSaveStateIsEmpty(t *testing.T) {
	n := NewNone()
	w := state.NewWriter()
	n.SaveState(w)
	assert.Empty(t, w.Finish())
}
