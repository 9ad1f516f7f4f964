// Package types implements the CIP elementary data-type codec: a closed
// enumeration of the 20 type codes the scanner supports, dispatched by a
// match on that enumeration rather than a runtime function-pointer table.
package types

import (
	"fmt"

	"github.com/IamMikeHelsel/enip-scanner/internal/scanerr"
)

// Code is a CIP elementary data-type code as it appears in a tag read
// reply or is supplied by a caller on a tag/assembly write.
type Code uint16

// The 20 supported codes: 15 elementary scalars (0xC1-0xCF), 4
// bit-string widths (0xD1-0xD4), and STRING (0xDA).
const (
	Bool        Code = 0xC1
	Sint        Code = 0xC2
	Int         Code = 0xC3
	Dint        Code = 0xC4
	Lint        Code = 0xC5
	Usint       Code = 0xC6
	Uint        Code = 0xC7
	Udint       Code = 0xC8
	Ulint       Code = 0xC9
	Real        Code = 0xCA
	Lreal       Code = 0xCB
	Stime       Code = 0xCC
	Date        Code = 0xCD
	TimeOfDay   Code = 0xCE
	DateAndTime Code = 0xCF
	Byte        Code = 0xD1
	Word        Code = 0xD2
	Dword       Code = 0xD3
	Lword       Code = 0xD4
	String      Code = 0xDA
)

// elementarySizes gives the fixed wire width, in bytes, of every
// pass-through scalar and bit-string code. STRING is variable-length
// and handled separately.
var elementarySizes = map[Code]int{
	Bool: 1, Sint: 1, Int: 2, Dint: 4, Lint: 8,
	Usint: 1, Uint: 2, Udint: 4, Ulint: 8,
	Real: 4, Lreal: 8,
	Stime: 4, Date: 2, TimeOfDay: 4, DateAndTime: 8,
	Byte: 1, Word: 2, Dword: 4, Lword: 8,
}

// IsKnown reports whether code is one of the 20 supported types.
func IsKnown(code Code) bool {
	if code == String {
		return true
	}
	_, ok := elementarySizes[code]
	return ok
}

// Size returns the fixed wire width of an elementary or bit-string code.
// It does not apply to STRING, whose length is data-dependent.
func Size(code Code) (int, error) {
	if n, ok := elementarySizes[code]; ok {
		return n, nil
	}
	return 0, scanerr.NewError(scanerr.KindUnsupportedType, fmt.Sprintf("type code 0x%04X", uint16(code)))
}

// Encode converts a caller-supplied value into its wire representation
// for the given type code. For every elementary and bit-string code this
// is a pass-through: the caller is expected to have already produced the
// exact byte width Size reports, and Encode only validates that width.
// For STRING, see EncodeString.
func Encode(code Code, value []byte) ([]byte, error) {
	if code == String {
		return EncodeString(value)
	}
	size, err := Size(code)
	if err != nil {
		return nil, err
	}
	if len(value) != size {
		return nil, scanerr.NewError(scanerr.KindInvalidArgument,
			fmt.Sprintf("type 0x%04X requires exactly %d bytes, got %d", uint16(code), size, len(value)))
	}
	return append([]byte{}, value...), nil
}

// Decode extracts a value of the given type code from response data,
// returning exactly the bytes that constitute it (pass-through for
// elementary/bit-string codes, length-prefix-stripped for STRING).
func Decode(code Code, data []byte) ([]byte, error) {
	if code == String {
		return DecodeString(data)
	}
	size, err := Size(code)
	if err != nil {
		return nil, err
	}
	if len(data) < size {
		return nil, scanerr.NewError(scanerr.KindBufferUnderrun,
			fmt.Sprintf("type 0x%04X needs %d bytes, got %d", uint16(code), size, len(data)))
	}
	return append([]byte{}, data[:size]...), nil
}

// MaxStringLength is the largest STRING payload the single-byte length
// prefix can describe.
const MaxStringLength = 255

// EncodeString drops a trailing NUL from value if present (the source
// system's estimator could not tell whether one was there and always
// counted it; this implementation looks at the actual payload instead),
// enforces the 255-byte cap, and emits `len | bytes`.
func EncodeString(value []byte) ([]byte, error) {
	trimmed := value
	if n := len(trimmed); n > 0 && trimmed[n-1] == 0x00 {
		trimmed = trimmed[:n-1]
	}
	if len(trimmed) > MaxStringLength {
		return nil, scanerr.NewError(scanerr.KindInvalidArgument,
			fmt.Sprintf("STRING length %d exceeds the %d-byte limit", len(trimmed), MaxStringLength))
	}
	out := make([]byte, 1+len(trimmed))
	out[0] = byte(len(trimmed))
	copy(out[1:], trimmed)
	return out, nil
}

// DecodeString reads the length-prefixed STRING wire format, requiring
// at least 1+len bytes of input, and returns exactly the string bytes
// (no length prefix, no padding).
func DecodeString(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, scanerr.NewError(scanerr.KindBufferUnderrun, "STRING missing length byte")
	}
	n := int(data[0])
	if len(data) < 1+n {
		return nil, scanerr.NewError(scanerr.KindBufferUnderrun,
			fmt.Sprintf("STRING declares %d bytes, only %d available", n, len(data)-1))
	}
	return append([]byte{}, data[1:1+n]...), nil
}
