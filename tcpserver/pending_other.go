//go:build !unix

package tcpserver

import (
	"errors"
	"net"
)

// pollPending is unavailable without poll(2); the accept queue cannot be
// inspected on this platform.
func pollPending(ln net.Listener) (bool, error) {
	return false, errors.New("pending check is not supported on this platform")
}
