package tags

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IamMikeHelsel/enip-scanner/internal/cip/types"
	"github.com/IamMikeHelsel/enip-scanner/internal/enip"
)

// fakeTagServer behaves like a Micro800 CPU for exactly one Read_Tag or
// Write_Tag exchange: it completes RegisterSession, replies to the first
// SendRRData with cipReply, and captures the CIP request bytes it saw.
func fakeTagServer(t *testing.T, cipReply []byte) (addr string, captured chan []byte) {
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
		regReply := enip.Header{Command: enip.CommandRegisterSession, Length: 4, SessionHandle: 7}.Encode()
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
		respHeader := enip.Header{Command: enip.CommandSendRRData, Length: uint16(len(respBody)), SessionHandle: 7}
		if _, err := conn.Write(append(respHeader.Encode(), respBody...)); err != nil {
			return
		}

		unregHdr := make([]byte, enip.HeaderSize)
		io.ReadFull(conn, unregHdr) //nolint:errcheck // best-effort drain
	}()

	return ln.Addr().String(), captured
}

func buildCIPReply(requestService uint8, status uint8, data []byte) []byte {
	out := []byte{requestService | 0x80, 0x00, status, 0x00}
	return append(out, data...)
}

func TestReadTagDint(t *testing.T) {
	// type code 0xC4 (DINT) followed by the value 12345 little-endian.
	data := []byte{0xC4, 0x00, 0x39, 0x30, 0x00, 0x00}
	cipReply := buildCIPReply(0x4C, 0x00, data)
	addr, captured := fakeTagServer(t, cipReply)

	value, err := Read(addr, "Counter", 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, types.Dint, value.Type)
	assert.Equal(t, []byte{0x39, 0x30, 0x00, 0x00}, value.Bytes)

	req := <-captured
	assert.Equal(t, uint8(0x4C), req[0])
	// req[2:] is the symbol path: 0x91 | len | "Counter" | pad.
	assert.Equal(t, byte(0x91), req[2])
	assert.Equal(t, byte(7), req[3])
	assert.Equal(t, []byte("Counter"), req[4:11])
}

func TestWriteTagRequiresCallerStatedType(t *testing.T) {
	cipReply := buildCIPReply(0x4D, 0x00, nil)
	addr, captured := fakeTagServer(t, cipReply)

	err := Write(addr, "Counter", types.Dint, []byte{0x39, 0x30, 0x00, 0x00}, 2*time.Second, zap.NewNop())
	require.NoError(t, err)

	req := <-captured
	assert.Equal(t, uint8(0x4D), req[0])
}

func TestReadTagUnsupportedTypeCode(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0x01, 0x02}
	cipReply := buildCIPReply(0x4C, 0x00, data)
	addr, _ := fakeTagServer(t, cipReply)

	_, err := Read(addr, "Counter", 2*time.Second, zap.NewNop())
	require.Error(t, err)
}
