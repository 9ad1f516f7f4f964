// Package cip implements the CIP request/response engine: it frames a
// service/path/data request inside SendRRData, drives one full
// {connect, register, send, receive, unregister, close} round trip, and
// decodes the reply's general status.
package cip

import (
	"fmt"
	"time"

	"github.com/IamMikeHelsel/enip-scanner/internal/bytecodec"
	"github.com/IamMikeHelsel/enip-scanner/internal/enip"
	"github.com/IamMikeHelsel/enip-scanner/internal/enip/session"
	"github.com/IamMikeHelsel/enip-scanner/internal/transport"
	"go.uber.org/zap"
)

// Service codes the scanner issues (§6.1).
const (
	ServiceGetAttributeAll    uint8 = 0x01
	ServiceSetAttributeAll    uint8 = 0x02
	ServiceGetAttributeSingle uint8 = 0x0E
	ServiceSetAttributeSingle uint8 = 0x10
	ServiceReadTag            uint8 = 0x4C
	ServiceWriteTag           uint8 = 0x4D
)

// Response is the result of a successful CIP round trip: the response
// data (with the CIP reply header and additional-status words already
// stripped), plus the framed reply's declared and received byte counts
// (ENIP header included). Truncated reports whether fewer bytes were
// received than the ENIP header declared. A reply cut short does not
// yield a Response: the session layer fails a connection that ends
// before the declared length arrives with a TransportError, and
// ParseSendRRData fails an Unconnected Data item that runs past the
// received bytes, so no partial data is returned.
type Response struct {
	Data        []byte
	Truncated   bool
	DeclaredLen int
	ActualLen   int
}

// Execute opens a fresh TCP socket and CIP session for endpoint, sends
// one CIP request built from pathBytes/service/payload, and returns the
// decoded response. The socket and session are always closed before
// Execute returns, on every exit path.
func Execute(endpoint string, pathBytes []byte, pathWords uint8, service uint8, payload []byte, timeout time.Duration, logger *zap.Logger) (*Response, error) {
	conn, err := transport.TCPConnect(endpoint, timeout)
	if err != nil {
		return nil, Wrap(KindTransportError, "connect", err)
	}
	defer conn.Close()

	d := transport.NewDeadline(timeout)

	sess, err := session.Register(conn, d, logger)
	if err != nil {
		return nil, err
	}
	defer session.Unregister(conn, sess.Handle, d, logger)

	cipReq := buildCIPRequest(service, pathBytes, pathWords, payload)
	sendRRData := enip.BuildSendRRData(cipReq, int(timeout.Seconds()))

	header := enip.Header{
		Command:       enip.CommandSendRRData,
		Length:        uint16(len(sendRRData)),
		SessionHandle: sess.Handle,
	}
	if err := transport.SendAll(conn, d, append(header.Encode(), sendRRData...)); err != nil {
		return nil, Wrap(KindTransportError, "send SendRRData", err)
	}

	replyBuf, err := session.ReadFramedReply(conn, d, enip.CommandSendRRData, logger)
	if err != nil {
		return nil, err
	}

	replyHeader, err := enip.DecodeHeader(replyBuf)
	if err != nil {
		return nil, err
	}
	if replyHeader.Status != 0 {
		return nil, NewError(KindProtocolError, fmt.Sprintf("ENIP status 0x%08X", replyHeader.Status))
	}

	declaredTotal := enip.HeaderSize + int(replyHeader.Length)
	truncated := len(replyBuf) < declaredTotal
	payloadBuf := replyBuf[enip.HeaderSize:]
	if !truncated {
		payloadBuf = replyBuf[enip.HeaderSize:declaredTotal]
	}

	cipPayload, err := enip.ParseSendRRData(payloadBuf)
	if err != nil {
		return nil, err
	}

	data, status, err := parseCIPResponse(cipPayload)
	if err != nil {
		return nil, err
	}
	if status != 0 {
		return nil, NewStatusError(status)
	}

	return &Response{
		Data:        data,
		Truncated:   truncated,
		DeclaredLen: declaredTotal,
		ActualLen:   len(replyBuf),
	}, nil
}

// buildCIPRequest assembles service | path_size_words | path | data.
func buildCIPRequest(service uint8, pathBytes []byte, pathWords uint8, data []byte) []byte {
	out := make([]byte, 2, 2+len(pathBytes)+len(data))
	out[0] = service
	out[1] = pathWords
	out = append(out, pathBytes...)
	out = append(out, data...)
	return out
}

// parseCIPResponse parses service|0x80 | reserved | general_status |
// additional_status_size_words | additional_status | response_data,
// validating the response-service high bit is set, and returns the
// response data with the header and additional-status words stripped.
func parseCIPResponse(buf []byte) (data []byte, status uint8, err error) {
	if len(buf) < 4 {
		return nil, 0, NewError(KindBufferUnderrun, "CIP response shorter than 4-byte header")
	}
	respService, _ := bytecodec.ReadU8(buf, 0)
	if respService&0x80 == 0 {
		return nil, 0, NewError(KindProtocolError, fmt.Sprintf("CIP response service 0x%02X missing reply bit", respService))
	}
	generalStatus, _ := bytecodec.ReadU8(buf, 2)
	addlWords, _ := bytecodec.ReadU8(buf, 3)

	start := 4 + int(addlWords)*2
	if start > len(buf) {
		return nil, 0, NewError(KindBufferUnderrun, "CIP response additional-status words exceed buffer")
	}
	return buf[start:], generalStatus, nil
}
