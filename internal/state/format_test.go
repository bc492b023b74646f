package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U8(0x42)
	w.Bool(true)
	w.U16(0xBEEF)
	w.U32(0xDEADBEEF)
	w.U64(0x0123456789ABCDEF)
	w.I32(-7)
	w.I64(-70000)
	w.Bytes([]byte{1, 2, 3, 4})

	r := NewReader(w.Finish())
	assert.EqualValues(t, 0x42, r.U8())
	assert.True(t, r.Bool())
	assert.EqualValues(t, 0xBEEF, r.U16())
	assert.EqualValues(t, 0xDEADBEEF, r.U32())
	assert.EqualValues(t, 0x0123456789ABCDEF, r.U64())
	assert.EqualValues(t, -7, r.I32())
	assert.EqualValues(t, -70000, r.I64())
	assert.Equal(t, []byte{1, 2, 3, 4}, r.Bytes(4))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	body := []byte("some section payload")
	encoded := Encode(body)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, body, decoded)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	encoded := Encode([]byte("payload"))
	encoded[0] ^= 0xFF

	_, err := Decode(encoded)
	assert.Error(t, err)
}

func TestDecodeRejectsCorruptedBody(t *testing.T) {
	encoded := Encode([]byte("payload"))
	encoded[len(encoded)-1] ^= 0xFF

	_, err := Decode(encoded)
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	encoded := Encode([]byte("payload"))
	encoded[4] ^= 0xFF

	_, err := Decode(encoded)
	assert.Error(t, err)
}
