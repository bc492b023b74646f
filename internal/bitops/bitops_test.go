package bitops

import "testing"

import "github.com/stretchr/testify/assert"

func TestField(t *testing.T) {
	assert.Equal(t, uint32(0xAB), Field(0xABCD, 8, 15))
	assert.Equal(t, uint32(0xCD), Field(0xABCD, 0, 7))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, int32(-2), SignExtend(0x3FE, 10))
	assert.Equal(t, int32(2), SignExtend(0x002, 10))
}

func TestRotateRight32(t *testing.T) {
	assert.Equal(t, uint32(0x80000000), RotateRight32(1, 1))
	assert.Equal(t, uint32(0x12345678), RotateRight32(0x12345678, 0))
	assert.Equal(t, uint32(0x78123456), RotateRight32(0x12345678, 8))
}

func TestPopCountAndLowest(t *testing.T) {
	assert.Equal(t, 3, PopCount16(0b1011))
	assert.Equal(t, 0, LowestSetBit16(0b1011))
	assert.Equal(t, -1, LowestSetBit16(0))
	assert.Equal(t, 2, LowestSetBit16(0b1100))
}
