package enip

import (
	"fmt"

	"github.com/IamMikeHelsel/enip-scanner/internal/bytecodec"
	"github.com/IamMikeHelsel/enip-scanner/internal/scanerr"
)

// CPF item type IDs used by the scanner (§6.1).
const (
	ItemNullAddress    uint16 = 0x0000
	ItemIdentity       uint16 = 0x000C
	ItemUnconnectedData uint16 = 0x00B2
)

// Item is one entry of a Common Packet Format item list.
type Item struct {
	Type    uint16
	Payload []byte
}

// encodeItems serializes an item count followed by each {type, length,
// payload} entry.
func encodeItems(items []Item) []byte {
	out := make([]byte, 2)
	bytecodec.WriteU16(out, 0, uint16(len(items))) //nolint:errcheck // fixed-size buffer, cannot underrun
	for _, it := range items {
		hdr := make([]byte, 4)
		bytecodec.WriteU16(hdr, 0, it.Type)             //nolint:errcheck
		bytecodec.WriteU16(hdr, 2, uint16(len(it.Payload))) //nolint:errcheck
		out = append(out, hdr...)
		out = append(out, it.Payload...)
	}
	return out
}

// decodeItems parses an item count followed by {type, length, payload}
// entries from buf, returning the parsed items and the number of bytes
// consumed.
func decodeItems(buf []byte) ([]Item, int, error) {
	count, err := bytecodec.ReadU16(buf, 0)
	if err != nil {
		return nil, 0, scanerr.Wrap(scanerr.KindProtocolError, "CPF item count", err)
	}
	offset := 2
	items := make([]Item, 0, count)
	for i := 0; i < int(count); i++ {
		typeID, err := bytecodec.ReadU16(buf, offset)
		if err != nil {
			return nil, 0, scanerr.Wrap(scanerr.KindProtocolError, "CPF item type", err)
		}
		length, err := bytecodec.ReadU16(buf, offset+2)
		if err != nil {
			return nil, 0, scanerr.Wrap(scanerr.KindProtocolError, "CPF item length", err)
		}
		start := offset + 4
		end := start + int(length)
		if end > len(buf) {
			return nil, 0, scanerr.NewError(scanerr.KindBufferUnderrun,
				fmt.Sprintf("CPF item %d declares %d bytes past end of buffer", i, length))
		}
		items = append(items, Item{Type: typeID, Payload: buf[start:end]})
		offset = end
	}
	return items, offset, nil
}

// BuildSendRRData assembles the SendRRData command payload that follows
// the encapsulation header: a zero interface handle, a CIP timeout in
// seconds clamped to [1,255], an item count, and the two CPF items a
// request always carries: Null Address (empty) and Unconnected Data
// (the CIP request bytes).
func BuildSendRRData(cipRequest []byte, timeoutSeconds int) []byte {
	if timeoutSeconds < 1 {
		timeoutSeconds = 1
	}
	if timeoutSeconds > 255 {
		timeoutSeconds = 255
	}
	out := make([]byte, 6)
	// interface handle (u32, zero) + CIP timeout (u16 seconds)
	bytecodec.WriteU16(out, 4, uint16(timeoutSeconds)) //nolint:errcheck
	out = append(out, encodeItems([]Item{
		{Type: ItemNullAddress, Payload: nil},
		{Type: ItemUnconnectedData, Payload: cipRequest},
	})...)
	return out
}

// ParseSendRRData parses a SendRRData response payload (the bytes after
// the encapsulation header), validates that its first two items are a
// Null Address item followed by an Unconnected Data item (any further
// items are ignored), and returns the
// Unconnected Data item's payload — the CIP response bytes.
func ParseSendRRData(payload []byte) ([]byte, error) {
	if len(payload) < 6 {
		return nil, scanerr.NewError(scanerr.KindBufferUnderrun, "SendRRData payload shorter than interface handle + timeout")
	}
	items, _, err := decodeItems(payload[6:])
	if err != nil {
		return nil, err
	}
	if len(items) < 2 {
		return nil, scanerr.NewError(scanerr.KindProtocolError, fmt.Sprintf("SendRRData expected 2 CPF items, got %d", len(items)))
	}
	if items[0].Type != ItemNullAddress {
		return nil, scanerr.NewError(scanerr.KindProtocolError, fmt.Sprintf("SendRRData item 0 type 0x%04X, want Null Address", items[0].Type))
	}
	if items[1].Type != ItemUnconnectedData {
		return nil, scanerr.NewError(scanerr.KindProtocolError, fmt.Sprintf("SendRRData item 1 type 0x%04X, want Unconnected Data 0x00B2", items[1].Type))
	}
	return items[1].Payload, nil
}

// BuildListIdentity returns the zero-length ListIdentity command
// payload: ListIdentity carries no data after the encapsulation header.
func BuildListIdentity() []byte { return nil }

// ParseListIdentityResponse parses a ListIdentity reply payload and
// returns the Identity item's raw payload bytes for the identity codec
// to decode.
func ParseListIdentityResponse(payload []byte) ([]byte, error) {
	items, _, err := decodeItems(payload)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Type == ItemIdentity {
			return it.Payload, nil
		}
	}
	return nil, scanerr.NewError(scanerr.KindProtocolError, "ListIdentity response carried no Identity item")
}
