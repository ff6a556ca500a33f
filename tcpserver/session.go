package tcpserver

import (
	"net"
	"sync"

	"github.com/cyberinferno/socketserver/bufferpool"
	"github.com/cyberinferno/socketserver/keygen"
	"github.com/cyberinferno/socketserver/logger"
)

// Session owns one accepted stream connection end-to-end: it runs the
// receive loop, exposes serialized sends, and reports terminal closure
// through the dispatcher. Sessions are created by the server's accept loop
// and removed from the registry exactly once when their lifecycle ends.
type Session struct {
	key        keygen.SessionKey
	conn       net.Conn
	server     *Server
	pool       bufferpool.Pool
	dispatcher Dispatcher
	log        logger.Logger

	sendMu    sync.Mutex
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

func newSession(
	key keygen.SessionKey,
	conn net.Conn,
	server *Server,
	pool bufferpool.Pool,
	dispatcher Dispatcher,
	log logger.Logger,
) *Session {
	return &Session{
		key:        key,
		conn:       conn,
		server:     server,
		pool:       pool,
		dispatcher: dispatcher,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Key returns the session's unique key, usable as a routing handle with the
// server's send operations.
func (s *Session) Key() keygen.SessionKey {
	return s.key
}

// Server returns the session's owning server, or nil for a session that was
// constructed outside an accept loop.
func (s *Session) Server() *Server {
	return s.server
}

// RemoteAddr returns the peer's address.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Done returns a channel that is closed once the session's unit of work has
// fully ended, including deregistration from the server.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start fires the dispatcher's started callback and runs the receive loop.
// Each received chunk is delivered to the dispatcher with a pooled buffer
// that is reclaimed as soon as the callback returns. Start resolves only
// when the peer closes, an I/O error occurs, or Close is called.
//
// Returns:
//   - nil when the stream ended as part of normal or shutdown-driven
//     closure, or the error that terminated the receive loop otherwise
func (s *Session) Start() error {
	s.dispatcher.OnSessionStarted(s)

	var loopErr error
	for {
		buf := s.pool.Acquire()
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.dispatcher.OnSessionDataReceived(s, buf[:n])
		}
		s.pool.Release(buf)

		if err != nil {
			if !isShutdownNoise(err) {
				loopErr = err
			}
			break
		}
	}

	_ = s.Close()
	return loopErr
}

// Send writes data to the underlying connection. Concurrent calls are
// serialized so two logical messages are never interleaved on the wire; no
// ordering is guaranteed between calls from different goroutines beyond
// each completing atomically.
//
// Parameters:
//   - data: The bytes to send; not retained
//
// Returns:
//   - An error if the write failed
func (s *Session) Send(data []byte) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	_, err := s.conn.Write(data)
	return err
}

// Close terminates the underlying connection, unblocking Start, and fires
// the dispatcher's closed callback. It is idempotent and safe to call from
// any goroutine.
//
// Returns:
//   - The error from closing the connection, if any; repeated calls return
//     the first result
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
		s.dispatcher.OnSessionClosed(s)
	})

	return s.closeErr
}
