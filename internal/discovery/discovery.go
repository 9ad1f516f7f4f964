// Package discovery implements UDP broadcast device discovery:
// ListIdentity (0x0063) fanned out to the EtherNet/IP port, collected
// for a bounded gather window and deduplicated by source address.
package discovery

import (
	"net"
	"time"

	"github.com/IamMikeHelsel/enip-scanner/internal/bytecodec"
	"github.com/IamMikeHelsel/enip-scanner/internal/cip"
	"github.com/IamMikeHelsel/enip-scanner/internal/enip"
	"github.com/IamMikeHelsel/enip-scanner/internal/transport"
	"go.uber.org/zap"
)

// Port is the well-known EtherNet/IP UDP port.
const Port = 44818

// Identity is one device's decoded ListIdentity reply (§3).
type Identity struct {
	IP          net.IP
	VendorID    uint16
	DeviceType  uint16
	ProductCode uint16
	Revision    uint16
	Status      uint16
	Serial      uint32
	ProductName string
	State       uint8
}

// Discover broadcasts ListIdentity and collects responses for the whole
// gatherWindow, then keeps at most maxDevices distinct source IPs in
// arrival order (no cap when maxDevices is 0 or less). Reaching the cap
// does not end the gather early. Responses from an already-seen source
// IP are dropped rather than counted twice.
func Discover(gatherWindow time.Duration, maxDevices int, logger *zap.Logger) ([]Identity, error) {
	header := enip.Header{Command: enip.CommandListIdentity, Length: 0}
	request := header.Encode()

	datagrams, err := transport.UDPBroadcast(Port, request, gatherWindow)
	if err != nil {
		return nil, cip.Wrap(cip.KindTransportError, "ListIdentity broadcast", err)
	}

	seen := make(map[string]bool)
	var identities []Identity
	for _, dg := range datagrams {
		if maxDevices > 0 && len(identities) >= maxDevices {
			break
		}
		key := dg.SourceIP.String()
		if seen[key] {
			continue
		}

		identity, err := parseReply(dg.SourceIP, dg.Payload)
		if err != nil {
			logger.Warn("discarding malformed ListIdentity reply", zap.String("source", key), zap.Error(err))
			continue
		}
		seen[key] = true
		identities = append(identities, identity)
	}
	return identities, nil
}

// parseReply decodes one UDP datagram's ENIP header, extracts its
// Identity CPF item, and parses the identity record fields.
func parseReply(source net.IP, buf []byte) (Identity, error) {
	header, err := enip.DecodeHeader(buf)
	if err != nil {
		return Identity{}, err
	}
	if header.Command != enip.CommandListIdentity {
		return Identity{}, cip.NewError(cip.KindProtocolError, "reply carried the wrong ENIP command")
	}
	if header.Status != 0 {
		return Identity{}, cip.NewError(cip.KindProtocolError, "ListIdentity reply carried a nonzero ENIP status")
	}

	want := enip.HeaderSize + int(header.Length)
	if len(buf) < want {
		want = len(buf)
	}
	itemPayload, err := enip.ParseListIdentityResponse(buf[enip.HeaderSize:want])
	if err != nil {
		return Identity{}, err
	}

	return decodeIdentityItem(source, itemPayload)
}

// decodeIdentityItem parses the Identity CPF item payload: a 2-byte
// encapsulation protocol version, a 16-byte sockaddr the scanner
// ignores (the UDP source address is authoritative), vendor/device/
// product/revision/status/serial, a short product-name string, and a
// trailing state byte.
func decodeIdentityItem(source net.IP, buf []byte) (Identity, error) {
	const sockaddrSize = 16
	offset := 2 + sockaddrSize // skip protocol version + sockaddr_in

	vendorID, err := bytecodec.ReadU16(buf, offset)
	if err != nil {
		return Identity{}, cip.Wrap(cip.KindBufferUnderrun, "identity vendor id", err)
	}
	deviceType, err := bytecodec.ReadU16(buf, offset+2)
	if err != nil {
		return Identity{}, cip.Wrap(cip.KindBufferUnderrun, "identity device type", err)
	}
	productCode, err := bytecodec.ReadU16(buf, offset+4)
	if err != nil {
		return Identity{}, cip.Wrap(cip.KindBufferUnderrun, "identity product code", err)
	}
	revision, err := bytecodec.ReadU16(buf, offset+6)
	if err != nil {
		return Identity{}, cip.Wrap(cip.KindBufferUnderrun, "identity revision", err)
	}
	status, err := bytecodec.ReadU16(buf, offset+8)
	if err != nil {
		return Identity{}, cip.Wrap(cip.KindBufferUnderrun, "identity status", err)
	}
	serial, err := bytecodec.ReadU32(buf, offset+10)
	if err != nil {
		return Identity{}, cip.Wrap(cip.KindBufferUnderrun, "identity serial", err)
	}

	nameOffset := offset + 14
	nameLen, err := bytecodec.ReadU8(buf, nameOffset)
	if err != nil {
		return Identity{}, cip.Wrap(cip.KindBufferUnderrun, "identity product name length", err)
	}
	nameStart := nameOffset + 1
	nameEnd := nameStart + int(nameLen)
	if nameEnd > len(buf) {
		return Identity{}, cip.NewError(cip.KindBufferUnderrun, "identity product name exceeds buffer")
	}
	productName := string(buf[nameStart:nameEnd])

	state, err := bytecodec.ReadU8(buf, nameEnd)
	if err != nil {
		return Identity{}, cip.Wrap(cip.KindBufferUnderrun, "identity state byte", err)
	}

	return Identity{
		IP:          source,
		VendorID:    vendorID,
		DeviceType:  deviceType,
		ProductCode: productCode,
		Revision:    revision,
		Status:      status,
		Serial:      serial,
		ProductName: productName,
		State:       state,
	}, nil
}
