package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFIFOTieBreak(t *testing.T) {
	s := New()
	var order []int
	s.Add(1, 10, func(late int64) { order = append(order, 1) })
	s.Add(2, 10, func(late int64) { order = append(order, 2) })
	s.Add(3, 10, func(late int64) { order = append(order, 3) })
	s.Advance(10)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestReplaceSameID(t *testing.T) {
	s := New()
	fired := 0
	s.Add(1, 5, func(late int64) { fired = 1 })
	s.Add(1, 5, func(late int64) { fired = 2 })
	s.Advance(5)
	assert.Equal(t, 2, fired)
}

func TestRemove(t *testing.T) {
	s := New()
	fired := false
	s.Add(1, 5, func(late int64) { fired = true })
	s.Remove(1)
	s.Advance(100)
	assert.False(t, fired)
}

func TestAdvanceBillsMonotonically(t *testing.T) {
	s := New()
	s.Advance(5)
	s.Advance(3)
	assert.EqualValues(t, 8, s.Now())
}

func TestFastForward(t *testing.T) {
	s := New()
	fired := false
	s.Add(1, 100, func(late int64) { fired = true })
	s.FastForward()
	assert.True(t, fired)
	assert.EqualValues(t, 100, s.Now())
}
