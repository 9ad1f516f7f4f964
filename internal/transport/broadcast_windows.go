//go:build windows

package transport

import "net"

// enableBroadcast is a no-op on Windows, where UDP sockets permit
// broadcast sends without an explicit SO_BROADCAST opt-in.
func enableBroadcast(conn *net.UDPConn) error {
	return nil
}
