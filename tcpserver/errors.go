package tcpserver

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

var (
	// ErrAlreadyStarted is returned by Start when the server is already
	// listening or mid-transition.
	ErrAlreadyStarted = errors.New("server already started")

	// ErrDisposed is returned when an operation is attempted on a server
	// that has been torn down.
	ErrDisposed = errors.New("server is disposed")

	// ErrInactive is returned by Pending when the server is not listening.
	ErrInactive = errors.New("server is not listening")
)

// isShutdownNoise classifies an error as a direct, harmless consequence of a
// concurrent or prior teardown: the listener or connection was already
// closed, the peer went away, or the stream ended. Such errors are swallowed
// (at most logged) throughout the accept loop, Start, and Stop.
func isShutdownNoise(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// isTimeout reports whether err is a communication timeout.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
