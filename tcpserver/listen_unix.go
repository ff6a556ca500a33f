//go:build unix

package tcpserver

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// listenControl builds the socket control hook for the listener bind,
// applying SO_REUSEADDR when the configuration asks for it.
func listenControl(cfg Config) func(network, address string, c syscall.RawConn) error {
	if !cfg.ReuseAddr {
		return nil
	}

	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}

		return sockErr
	}
}
