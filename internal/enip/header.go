// Package enip implements the EtherNet/IP encapsulation layer: the
// 24-byte header, the Common Packet Format item list, and the
// ListIdentity/SendRRData command framing CIP rides inside.
package enip

import (
	"fmt"

	"github.com/IamMikeHelsel/enip-scanner/internal/bytecodec"
	"github.com/IamMikeHelsel/enip-scanner/internal/scanerr"
)

// Encapsulation command codes used by the scanner (§6.1).
const (
	CommandListIdentity      uint16 = 0x0063
	CommandRegisterSession   uint16 = 0x0065
	CommandUnregisterSession uint16 = 0x0066
	CommandSendRRData        uint16 = 0x006F
)

// HeaderSize is the fixed size of the ENIP encapsulation header.
const HeaderSize = 24

// Header is the 24-byte EtherNet/IP encapsulation header, all multibyte
// fields little-endian.
type Header struct {
	Command       uint16
	Length        uint16 // payload byte length following the header
	SessionHandle uint32
	Status        uint32
	SenderContext [8]byte // opaque to the scanner, echoed by the peer
	Options       uint32
}

// Encode writes the header into a fresh 24-byte buffer.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	_ = bytecodec.WriteU16(buf, 0, h.Command)
	_ = bytecodec.WriteU16(buf, 2, h.Length)
	_ = bytecodec.WriteU32(buf, 4, h.SessionHandle)
	_ = bytecodec.WriteU32(buf, 8, h.Status)
	copy(buf[12:20], h.SenderContext[:])
	_ = bytecodec.WriteU32(buf, 20, h.Options)
	return buf
}

// DecodeHeader parses a 24-byte ENIP header from buf[0:24].
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, scanerr.NewError(scanerr.KindBufferUnderrun,
			fmt.Sprintf("ENIP header needs %d bytes, got %d", HeaderSize, len(buf)))
	}
	var h Header
	h.Command, _ = bytecodec.ReadU16(buf, 0)
	h.Length, _ = bytecodec.ReadU16(buf, 2)
	h.SessionHandle, _ = bytecodec.ReadU32(buf, 4)
	h.Status, _ = bytecodec.ReadU32(buf, 8)
	copy(h.SenderContext[:], buf[12:20])
	h.Options, _ = bytecodec.ReadU32(buf, 20)
	return h, nil
}

// ResyncScan searches the first 8 bytes of buf on a 2-byte stride for a
// header whose Command field equals want, tolerating garbage a peer
// prepended or a partial read resynced mid-stream. It returns the byte
// offset at which a matching header begins and whether a scan past
// offset 0 was required. If no match is found within the scan window,
// ok is false and the caller should treat buf as unparseable.
func ResyncScan(buf []byte, want uint16) (offset int, resynced bool, ok bool) {
	const scanWindow = 8
	limit := scanWindow
	if len(buf)-HeaderSize < limit {
		limit = len(buf) - HeaderSize
	}
	for off := 0; off <= limit; off += 2 {
		if off+2 > len(buf) {
			break
		}
		cmd, err := bytecodec.ReadU16(buf, off)
		if err != nil {
			break
		}
		if cmd == want {
			return off, off != 0, true
		}
	}
	return 0, false, false
}
