package types

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementaryRoundTrip(t *testing.T) {
	for code, size := range elementarySizes {
		raw := make([]byte, size)
		for i := range raw {
			raw[i] = byte(i + 1)
		}
		encoded, err := Encode(code, raw)
		require.NoError(t, err)
		decoded, err := Decode(code, encoded)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(raw, decoded), "code 0x%X round trip", code)
	}
}

func TestDintRoundTripValue12345(t *testing.T) {
	raw := []byte{0x39, 0x30, 0x00, 0x00}
	decoded, err := Decode(Dint, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestUnsupportedType(t *testing.T) {
	_, err := Size(0xFF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UnsupportedType")
}

func TestStringLengths(t *testing.T) {
	cases := []int{0, 1, 254, 255}
	for _, n := range cases {
		s := strings.Repeat("x", n)
		encoded, err := EncodeString([]byte(s))
		require.NoError(t, err, "length %d", n)
		assert.Equal(t, byte(n), encoded[0])
		decoded, err := DecodeString(encoded)
		require.NoError(t, err)
		assert.Equal(t, s, string(decoded))
	}
}

func TestString256Fails(t *testing.T) {
	_, err := EncodeString([]byte(strings.Repeat("x", 256)))
	assert.Error(t, err)
}

func TestStringDropsTrailingNUL(t *testing.T) {
	encoded, err := EncodeString([]byte("Hello\x00"))
	require.NoError(t, err)
	assert.Equal(t, byte(5), encoded[0])
	assert.Equal(t, "Hello", string(encoded[1:]))
}

func TestStringWriteHelloPLC(t *testing.T) {
	encoded, err := EncodeString([]byte("Hello, PLC!"))
	require.NoError(t, err)
	want := append([]byte{0x0B}, []byte("Hello, PLC!")...)
	assert.Equal(t, want, encoded)
}

func TestDecodeStringUnderrun(t *testing.T) {
	_, err := DecodeString([]byte{5, 'a', 'b'})
	assert.Error(t, err)

	_, err = DecodeString(nil)
	assert.Error(t, err)
}

func TestDecodeStringToleratesExtraTrailingBytes(t *testing.T) {
	// declared length smaller than supplied data: trust the declaration.
	data := []byte{3, 'a', 'b', 'c', 'd', 'e'}
	decoded, err := DecodeString(data)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(decoded))
}
