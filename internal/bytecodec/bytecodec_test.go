package bytecodec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripIntegers(t *testing.T) {
	buf := make([]byte, 32)

	require.NoError(t, WriteU8(buf, 0, 0xAB))
	v8, err := ReadU8(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), v8)

	require.NoError(t, WriteU16(buf, 1, 0x1234))
	v16, err := ReadU16(buf, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v16)
	assert.Equal(t, byte(0x34), buf[1])
	assert.Equal(t, byte(0x12), buf[2])

	require.NoError(t, WriteU32(buf, 4, 0xDEADBEEF))
	v32, err := ReadU32(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v32)

	require.NoError(t, WriteU64(buf, 8, 0x0123456789ABCDEF))
	v64, err := ReadU64(buf, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789ABCDEF), v64)
}

func TestRoundTripFloats(t *testing.T) {
	buf := make([]byte, 16)

	require.NoError(t, WriteF32(buf, 0, 3.14159))
	f32, err := ReadF32(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(3.14159), f32)

	require.NoError(t, WriteF64(buf, 4, math.Pi))
	f64, err := ReadF64(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, math.Pi, f64)
}

func TestBufferUnderrun(t *testing.T) {
	buf := make([]byte, 2)

	_, err := ReadU16(buf, 1)
	assert.ErrorIs(t, err, ErrBufferUnderrun)

	_, err = ReadU32(buf, 0)
	assert.ErrorIs(t, err, ErrBufferUnderrun)

	err = WriteU8(buf, 5, 1)
	assert.ErrorIs(t, err, ErrBufferUnderrun)

	_, err = ReadU64(nil, 0)
	assert.ErrorIs(t, err, ErrBufferUnderrun)
}

func TestNegativeOffset(t *testing.T) {
	buf := make([]byte, 8)
	_, err := ReadU16(buf, -1)
	assert.ErrorIs(t, err, ErrBufferUnderrun)
}
