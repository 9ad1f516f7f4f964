package assembly

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IamMikeHelsel/enip-scanner/internal/enip"
)

// fakeAssemblyServer serves an unbounded number of sequential
// connections, classifying each by the Instance segment of the request
// path (path bytes: 0x20 class 0x24 instance ...) through respond.
func fakeAssemblyServer(t *testing.T, respond func(instance byte, service uint8) (status uint8, data []byte)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveOne(conn, respond)
		}
	}()

	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func serveOne(conn net.Conn, respond func(instance byte, service uint8) (uint8, []byte)) {
	defer conn.Close()

	regHdr := make([]byte, enip.HeaderSize+4)
	if _, err := io.ReadFull(conn, regHdr); err != nil {
		return
	}
	regReply := enip.Header{Command: enip.CommandRegisterSession, Length: 4, SessionHandle: 42}.Encode()
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

	service := cipReq[0]
	instance := cipReq[5] // service, path words, 0x20 class 0x24 instance ...
	status, data := respond(instance, service)

	cipReply := append([]byte{service | 0x80, 0x00, status, 0x00}, data...)
	respBody := enip.BuildSendRRData(cipReply, 5)
	respHeader := enip.Header{Command: enip.CommandSendRRData, Length: uint16(len(respBody)), SessionHandle: 42}
	if _, err := conn.Write(append(respHeader.Encode(), respBody...)); err != nil {
		return
	}

	unregHdr := make([]byte, enip.HeaderSize)
	io.ReadFull(conn, unregHdr) //nolint:errcheck // best-effort drain
}

func TestReadReturnsRawBytes(t *testing.T) {
	addr := fakeAssemblyServer(t, func(instance byte, service uint8) (uint8, []byte) {
		return 0x00, []byte{0x04, 0x00, 0x00, 0x00}
	})

	data, err := Read(addr, 100, 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x00, 0x00, 0x00}, data)
}

func TestWriteSendsCallerBytes(t *testing.T) {
	addr := fakeAssemblyServer(t, func(instance byte, service uint8) (uint8, []byte) {
		return 0x00, nil
	})

	err := Write(addr, 100, []byte{0x01, 0x02, 0x03}, 2*time.Second, zap.NewNop())
	require.NoError(t, err)
}

func TestDiscoverSkipsFailingInstances(t *testing.T) {
	addr := fakeAssemblyServer(t, func(instance byte, service uint8) (uint8, []byte) {
		if instance == 3 {
			return 0x00, []byte{0xAA, 0xBB}
		}
		return 0x16, nil // Object does not exist
	})

	found := Discover(addr, 1, 5, 2*time.Second, zap.NewNop())
	require.Len(t, found, 1)
	assert.Equal(t, uint32(3), found[0].Instance)
	assert.Equal(t, []byte{0xAA, 0xBB}, found[0].Data)
}
