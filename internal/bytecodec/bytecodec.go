// Package bytecodec provides bounds-checked little-endian encoding and
// decoding of the integer and floating-point widths the EtherNet/IP and
// CIP wire formats use.
package bytecodec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ErrBufferUnderrun is returned whenever a read or write would reach past
// the end of the supplied buffer.
var ErrBufferUnderrun = fmt.Errorf("bytecodec: buffer underrun")

func need(buf []byte, offset, size int) error {
	if offset < 0 || size < 0 || offset+size > len(buf) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrBufferUnderrun, size, offset, len(buf))
	}
	return nil
}

// ReadU8 reads a single byte at offset.
func ReadU8(buf []byte, offset int) (uint8, error) {
	if err := need(buf, offset, 1); err != nil {
		return 0, err
	}
	return buf[offset], nil
}

// WriteU8 writes a single byte at offset.
func WriteU8(buf []byte, offset int, v uint8) error {
	if err := need(buf, offset, 1); err != nil {
		return err
	}
	buf[offset] = v
	return nil
}

// ReadU16 reads a little-endian uint16 at offset.
func ReadU16(buf []byte, offset int) (uint16, error) {
	if err := need(buf, offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[offset:]), nil
}

// WriteU16 writes a little-endian uint16 at offset.
func WriteU16(buf []byte, offset int, v uint16) error {
	if err := need(buf, offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(buf[offset:], v)
	return nil
}

// ReadU32 reads a little-endian uint32 at offset.
func ReadU32(buf []byte, offset int) (uint32, error) {
	if err := need(buf, offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[offset:]), nil
}

// WriteU32 writes a little-endian uint32 at offset.
func WriteU32(buf []byte, offset int, v uint32) error {
	if err := need(buf, offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf[offset:], v)
	return nil
}

// ReadU64 reads a little-endian uint64 at offset.
func ReadU64(buf []byte, offset int) (uint64, error) {
	if err := need(buf, offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[offset:]), nil
}

// WriteU64 writes a little-endian uint64 at offset.
func WriteU64(buf []byte, offset int, v uint64) error {
	if err := need(buf, offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf[offset:], v)
	return nil
}

// ReadF32 reads an IEEE-754 single-precision float via explicit bit
// reinterpretation, never relying on host float endianness.
func ReadF32(buf []byte, offset int) (float32, error) {
	bits, err := ReadU32(buf, offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// WriteF32 writes an IEEE-754 single-precision float via explicit bit
// reinterpretation.
func WriteF32(buf []byte, offset int, v float32) error {
	return WriteU32(buf, offset, math.Float32bits(v))
}

// ReadF64 reads an IEEE-754 double-precision float via explicit bit
// reinterpretation.
func ReadF64(buf []byte, offset int) (float64, error) {
	bits, err := ReadU64(buf, offset)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// WriteF64 writes an IEEE-754 double-precision float via explicit bit
// reinterpretation.
func WriteF64(buf []byte, offset int, v float64) error {
	return WriteU64(buf, offset, math.Float64bits(v))
}
