//go:build unix

package tcpserver

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// pollPending performs a zero-timeout poll on the listener's file
// descriptor: readability on a listening socket means a connection is
// waiting in the accept queue.
func pollPending(ln net.Listener) (bool, error) {
	tcp, ok := ln.(*net.TCPListener)
	if !ok {
		return false, fmt.Errorf("pending check unsupported for listener type %T", ln)
	}

	rc, err := tcp.SyscallConn()
	if err != nil {
		return false, err
	}

	var ready bool
	var pollErr error
	err = rc.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			n, err := unix.Poll(fds, 0)
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if err != nil {
				pollErr = err
				return
			}

			ready = n > 0 && fds[0].Revents&unix.POLLIN != 0
			return
		}
	})
	if err != nil {
		return false, err
	}

	return ready, pollErr
}
