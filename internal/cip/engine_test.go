package cip

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IamMikeHelsel/enip-scanner/internal/cip/path"
	"github.com/IamMikeHelsel/enip-scanner/internal/enip"
)

// fakeServer accepts one connection, completes RegisterSession with
// sessionHandle, replies to the first SendRRData with cipReply, and
// drains (without answering) the closing UnRegisterSession. It returns
// the listener address and a channel carrying the CIP request bytes the
// server observed, for the caller to assert against.
func fakeServer(t *testing.T, sessionHandle uint32, cipReply []byte) (addr string, captured chan []byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	captured = make(chan []byte, 1)

	go func() {
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		regHdr := make([]byte, enip.HeaderSize+4)
		if _, err := io.ReadFull(conn, regHdr); err != nil {
			return
		}
		regReply := enip.Header{Command: enip.CommandRegisterSession, Length: 4, SessionHandle: sessionHandle}.Encode()
		regReply = append(regReply, regHdr[enip.HeaderSize:]...)
		if _, err := conn.Write(regReply); err != nil {
			return
		}

		reqHdr := make([]byte, enip.HeaderSize)
		if _, err := io.ReadFull(conn, reqHdr); err != nil {
			return
		}
		h, err := enip.DecodeHeader(reqHdr)
		if err != nil {
			return
		}
		body := make([]byte, h.Length)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		cipReq, err := enip.ParseSendRRData(body)
		if err != nil {
			return
		}
		captured <- cipReq

		respBody := enip.BuildSendRRData(cipReply, 5)
		respHeader := enip.Header{Command: enip.CommandSendRRData, Length: uint16(len(respBody)), SessionHandle: sessionHandle}
		if _, err := conn.Write(append(respHeader.Encode(), respBody...)); err != nil {
			return
		}

		unregHdr := make([]byte, enip.HeaderSize)
		io.ReadFull(conn, unregHdr) //nolint:errcheck // best-effort drain
	}()

	return ln.Addr().String(), captured
}

// buildCIPReply assembles a success or failure CIP response body:
// service|0x80, reserved, general_status, zero additional-status words.
func buildCIPReply(requestService uint8, status uint8, data []byte) []byte {
	out := []byte{requestService | 0x80, 0x00, status, 0x00}
	return append(out, data...)
}

func TestExecuteAssemblyReadSuccess(t *testing.T) {
	data := []byte{0x04, 0x00, 0x00, 0x00}
	cipReply := buildCIPReply(ServiceGetAttributeSingle, 0x00, data)
	addr, captured := fakeServer(t, 0xDEADBEEF, cipReply)

	pathBytes, pathWords, err := path.InstanceAttribute(0x04, 100, attrPtr(3))
	require.NoError(t, err)

	resp, err := Execute(addr, pathBytes, pathWords, ServiceGetAttributeSingle, nil, 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, data, resp.Data)
	assert.False(t, resp.Truncated)

	req := <-captured
	assert.Equal(t, ServiceGetAttributeSingle, req[0])
}

func TestExecuteCIPStatusError(t *testing.T) {
	cipReply := buildCIPReply(ServiceGetAttributeSingle, 0x05, nil)
	addr, _ := fakeServer(t, 0x1, cipReply)

	pathBytes, pathWords, err := path.InstanceAttribute(0x04, 1, attrPtr(3))
	require.NoError(t, err)

	_, err = Execute(addr, pathBytes, pathWords, ServiceGetAttributeSingle, nil, 2*time.Second, zap.NewNop())
	require.Error(t, err)
	cipErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindCIPStatus, cipErr.Kind)
	assert.Equal(t, uint8(0x05), cipErr.Code)
	assert.Contains(t, cipErr.Error(), "Path destination unknown")
}

func TestExecuteNoServerIsTransportError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	pathBytes, pathWords, err := path.InstanceAttribute(0x04, 1, attrPtr(3))
	require.NoError(t, err)

	_, err = Execute(addr, pathBytes, pathWords, ServiceGetAttributeSingle, nil, 300*time.Millisecond, zap.NewNop())
	require.Error(t, err)
	cipErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindTransportError, cipErr.Kind)
}

func attrPtr(v uint32) *uint32 { return &v }
