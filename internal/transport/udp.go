package transport

import (
	"fmt"
	"net"
	"time"
)

// Datagram is one UDP response collected during a gather window, tagged
// with the source address it arrived from.
type Datagram struct {
	SourceIP net.IP
	Payload  []byte
}

// UDPBroadcast sends payload to the IPv4 limited broadcast address on
// port, then collects datagrams until gatherWindow elapses. It never
// blocks past gatherWindow, even if no response ever arrives.
func UDPBroadcast(port int, payload []byte, gatherWindow time.Duration) ([]Datagram, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, fmt.Errorf("udp listen: %w", err)
	}
	defer conn.Close()

	if err := enableBroadcast(conn); err != nil {
		return nil, fmt.Errorf("enable udp broadcast: %w", err)
	}

	dst := &net.UDPAddr{IP: net.IPv4bcast, Port: port}
	if err := conn.SetWriteDeadline(time.Now().Add(gatherWindow)); err != nil {
		return nil, fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := conn.WriteToUDP(payload, dst); err != nil {
		return nil, fmt.Errorf("udp broadcast send: %w", err)
	}

	deadline := time.Now().Add(gatherWindow)
	var out []Datagram
	buf := make([]byte, 1500)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return out, fmt.Errorf("set read deadline: %w", err)
		}
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			break
		}
		payloadCopy := append([]byte{}, buf[:n]...)
		out = append(out, Datagram{SourceIP: addr.IP, Payload: payloadCopy})
	}
	return out, nil
}
