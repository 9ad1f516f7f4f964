// Package tags implements symbolic tag read/write against Allen-Bradley
// Micro800 PLCs: dotted/bracketed tag names resolved through the ANSI
// Extended Symbol path, Read_Tag (0x4C) and Write_Tag (0x4D) service
// framing, and dispatch through the CIP data-type codec.
package tags

import (
	"time"

	"github.com/IamMikeHelsel/enip-scanner/internal/bytecodec"
	"github.com/IamMikeHelsel/enip-scanner/internal/cip"
	"github.com/IamMikeHelsel/enip-scanner/internal/cip/path"
	"github.com/IamMikeHelsel/enip-scanner/internal/cip/types"
	"go.uber.org/zap"
)

// Value pairs a decoded tag value with the CIP type code the peer
// reported it as, since the caller needs the type to interpret the
// value bytes (a DINT and a REAL are both 4 bytes on the wire).
type Value struct {
	Type  types.Code
	Bytes []byte
}

// Read resolves tagName to a symbolic path, sends a single-element
// Read_Tag request, and returns the decoded value bytes tagged with the
// type code the peer reported.
func Read(endpoint, tagName string, timeout time.Duration, logger *zap.Logger) (Value, error) {
	pathBytes, pathWords, err := path.Symbolic(tagName)
	if err != nil {
		return Value{}, cip.Wrap(cip.KindInvalidArgument, "build symbolic path", err)
	}

	elementCount := make([]byte, 2)
	bytecodec.WriteU16(elementCount, 0, 1) //nolint:errcheck // fixed-size buffer

	resp, err := cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceReadTag, elementCount, timeout, logger)
	if err != nil {
		return Value{}, err
	}

	typeCode, err := bytecodec.ReadU16(resp.Data, 0)
	if err != nil {
		return Value{}, cip.Wrap(cip.KindBufferUnderrun, "Read_Tag reply missing type code", err)
	}
	code := types.Code(typeCode)
	if !types.IsKnown(code) {
		return Value{}, cip.NewError(cip.KindUnsupportedType, "Read_Tag reply type code")
	}

	decoded, err := types.Decode(code, resp.Data[2:])
	if err != nil {
		return Value{}, err
	}
	return Value{Type: code, Bytes: decoded}, nil
}

// Write resolves tagName to a symbolic path and sends a single-element
// Write_Tag request carrying the caller-stated type and encoded value.
// The caller states the CIP type because a Write_Tag request carries no
// prior read to infer it from.
func Write(endpoint, tagName string, valueType types.Code, value []byte, timeout time.Duration, logger *zap.Logger) error {
	pathBytes, pathWords, err := path.Symbolic(tagName)
	if err != nil {
		return cip.Wrap(cip.KindInvalidArgument, "build symbolic path", err)
	}

	encoded, err := types.Encode(valueType, value)
	if err != nil {
		return err
	}

	payload := make([]byte, 4, 4+len(encoded))
	bytecodec.WriteU16(payload, 0, uint16(valueType)) //nolint:errcheck
	bytecodec.WriteU16(payload, 2, 1)                 //nolint:errcheck // element count
	payload = append(payload, encoded...)

	_, err = cip.Execute(endpoint, pathBytes, pathWords, cip.ServiceWriteTag, payload, timeout, logger)
	return err
}
