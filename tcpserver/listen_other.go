//go:build !unix

package tcpserver

import "syscall"

// listenControl builds the socket control hook for the listener bind. The
// ReuseAddr toggle has no effect on platforms without socket option control.
func listenControl(cfg Config) func(network, address string, c syscall.RawConn) error {
	return nil
}
