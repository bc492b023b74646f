package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteOneToClear(t *testing.T) {
	c := New()
	c.Raise(0b0110)
	c.WriteIF(0b0010)
	assert.EqualValues(t, 0b0100, c.ReadIF())
}

func TestShouldTakeIRQ(t *testing.T) {
	c := New()
	c.WriteIE(0b1)
	c.Raise(0b1)
	assert.False(t, c.ShouldTakeIRQ(), "IME still clear")
	c.WriteIME(1)
	assert.True(t, c.ShouldTakeIRQ())
}

func TestPendingIndependentOfIME(t *testing.T) {
	c := New()
	c.WriteIE(0b1)
	c.Raise(0b1)
	assert.True(t, c.Pending(), "halt must wake regardless of IME")
}
