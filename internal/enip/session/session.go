// Package session implements CIP session registration and scoped
// acquisition over an already-connected transport socket.
package session

import (
	"fmt"
	"net"

	"github.com/IamMikeHelsel/enip-scanner/internal/bytecodec"
	"github.com/IamMikeHelsel/enip-scanner/internal/scanerr"
	"github.com/IamMikeHelsel/enip-scanner/internal/enip"
	"github.com/IamMikeHelsel/enip-scanner/internal/transport"
	"go.uber.org/zap"
)

// Session carries the 32-bit handle a peer issued for one open TCP
// socket. It is only valid while that socket remains open; a handle
// must never be reused across sockets.
type Session struct {
	Conn   net.Conn
	Handle uint32
}

// Register sends a 28-byte RegisterSession command (protocol version 1,
// options 0) and returns the session handle the peer assigned.
func Register(conn net.Conn, timeout transport.Deadline, logger *zap.Logger) (*Session, error) {
	data := make([]byte, 4)
	bytecodec.WriteU16(data, 0, 1) //nolint:errcheck // protocol version
	bytecodec.WriteU16(data, 2, 0) //nolint:errcheck // options

	header := enip.Header{
		Command: enip.CommandRegisterSession,
		Length:  uint16(len(data)),
	}

	if err := transport.SendAll(conn, timeout, append(header.Encode(), data...)); err != nil {
		return nil, scanerr.Wrap(scanerr.KindTransportError, "send RegisterSession", err)
	}

	respBuf, err := readFramedReply(conn, timeout, enip.CommandRegisterSession, logger)
	if err != nil {
		return nil, err
	}

	respHeader, err := enip.DecodeHeader(respBuf)
	if err != nil {
		return nil, err
	}
	if respHeader.Status != 0 {
		return nil, scanerr.NewError(scanerr.KindProtocolError, fmt.Sprintf("RegisterSession status 0x%08X", respHeader.Status))
	}
	if respHeader.SessionHandle == 0 {
		return nil, scanerr.NewError(scanerr.KindProtocolError, "RegisterSession returned a zero session handle")
	}

	logger.Debug("CIP session registered", zap.Uint32("session_id", respHeader.SessionHandle))
	return &Session{Conn: conn, Handle: respHeader.SessionHandle}, nil
}

// Unregister sends a 24-byte, zero-payload UnRegisterSession command.
// Failures are logged, never returned as a fatal error to the caller,
// since an unregister failure must not mask a prior successful result.
func Unregister(conn net.Conn, handle uint32, timeout transport.Deadline, logger *zap.Logger) {
	header := enip.Header{
		Command:       enip.CommandUnregisterSession,
		Length:        0,
		SessionHandle: handle,
	}
	if err := transport.SendAll(conn, timeout, header.Encode()); err != nil {
		logger.Warn("failed to unregister CIP session", zap.Uint32("session_id", handle), zap.Error(err))
	}
}

// readFramedReply reads at least a 24-byte ENIP header, then resyncs
// over up to 8 bytes of leading garbage per enip.ResyncScan, growing the
// buffer only if the common no-garbage case (a valid header at offset 0)
// doesn't hold. It then reads the declared payload length, reassembling
// across short reads.
func readFramedReply(conn net.Conn, timeout transport.Deadline, wantCommand uint16, logger *zap.Logger) ([]byte, error) {
	buf, err := transport.RecvAtLeast(conn, timeout, enip.HeaderSize)
	if err != nil {
		return nil, scanerr.Wrap(scanerr.KindTransportError, "receive ENIP header", err)
	}

	offset, resynced, ok := enip.ResyncScan(buf, wantCommand)
	if !ok {
		more, err := transport.RecvAtLeast(conn, timeout, enip.HeaderSize+8-len(buf))
		if err != nil {
			return nil, scanerr.Wrap(scanerr.KindTransportError, "receive ENIP header resync margin", err)
		}
		buf = append(buf, more...)
		offset, resynced, ok = enip.ResyncScan(buf, wantCommand)
	}
	if !ok {
		return nil, scanerr.NewError(scanerr.KindProtocolError, "could not locate expected ENIP command in reply")
	}
	if resynced {
		logger.Warn("ENIP reply required resync", zap.Int("offset", offset), zap.Uint16("command", wantCommand))
	}
	buf = buf[offset:]

	header, err := enip.DecodeHeader(buf)
	if err != nil {
		return nil, err
	}

	want := enip.HeaderSize + int(header.Length)
	for len(buf) < want {
		more, err := transport.RecvSome(conn, timeout, want-len(buf))
		if err != nil {
			return nil, scanerr.Wrap(scanerr.KindTransportError, "receive ENIP payload", err)
		}
		if len(more) == 0 {
			break
		}
		buf = append(buf, more...)
	}
	if len(buf) > want {
		buf = buf[:want]
	}
	return buf, nil
}

// ReadFramedReply is the exported entry point other packages (the CIP
// engine) use to read a full ENIP reply for a command they expect.
func ReadFramedReply(conn net.Conn, timeout transport.Deadline, wantCommand uint16, logger *zap.Logger) ([]byte, error) {
	return readFramedReply(conn, timeout, wantCommand, logger)
}
