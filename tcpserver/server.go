// Package tcpserver implements a connection-oriented socket server: an
// accept loop that tracks each inbound connection as an independent
// long-lived session, a concurrency-safe session registry, and send and
// broadcast fan-out across the live session set. Message framing lives in
// the wsframe package; the server moves raw bytes.
package tcpserver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cyberinferno/socketserver/bufferpool"
	"github.com/cyberinferno/socketserver/keygen"
	"github.com/cyberinferno/socketserver/logger"
	"github.com/cyberinferno/socketserver/metrics"
	"github.com/cyberinferno/socketserver/registry"
)

// State is the server's lifecycle state. Transitions are monotonic and
// exclusive: Idle to Listening to Disposed, never skipping or reversing.
type State int32

const (
	StateIdle State = iota
	StateListening
	StateDisposed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// recentlyClosedTTL is how long a deregistered session key is remembered so
// routing misses against it can be classified as late sends rather than
// sends to a key that never existed.
const recentlyClosedTTL = 5 * time.Minute

// Server owns the listening endpoint and the session registry. It drives
// the accept loop, spawning one independent unit of work per accepted
// connection, and exposes send-to-key, send-to-session, and broadcast
// routing over the live session set. A Server goes through its lifecycle
// exactly once; a stopped server cannot be restarted.
type Server struct {
	cfg        Config
	log        logger.Logger
	dispatcher Dispatcher
	pool       bufferpool.Pool
	metrics    *metrics.ServerMetrics

	state    atomic.Int32
	mu       sync.Mutex // guards listener
	listener net.Listener

	sessions       *registry.Registry[keygen.SessionKey, *Session]
	keys           *keygen.Generator
	recentlyClosed *cache.Cache
	wg             sync.WaitGroup
}

// Option configures a Server at construction.
type Option func(*Server)

// WithLogger sets the server's logger. The default discards all output.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithMetrics attaches Prometheus collectors to the server. The default is
// no metrics.
func WithMetrics(m *metrics.ServerMetrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithPool replaces the server's buffer pool. The default is a SlabPool
// sized from the configuration.
func WithPool(p bufferpool.Pool) Option {
	return func(s *Server) {
		s.pool = p
	}
}

// NewServer creates a Server in the Idle state. Nothing is bound until
// Start is called.
//
// Parameters:
//   - cfg: Server configuration (e.g. from DefaultConfig)
//   - dispatcher: Receives per-session lifecycle callbacks; nil installs a
//     dispatcher that ignores everything
//   - opts: Optional logger, metrics, and pool overrides
//
// Returns:
//   - A new Server ready to Start
func NewServer(cfg Config, dispatcher Dispatcher, opts ...Option) *Server {
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}

	s := &Server{
		cfg:            cfg,
		log:            logger.NewNopLogger(),
		dispatcher:     dispatcher,
		sessions:       registry.NewRegistry[keygen.SessionKey, *Session](),
		keys:           keygen.NewGenerator(0),
		recentlyClosed: cache.New(recentlyClosedTTL, 2*recentlyClosedTTL),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.pool == nil {
		s.pool = bufferpool.NewSlabPool(cfg.ReceiveBufferSize, cfg.InitialBufferCount)
	}

	return s
}

// State returns the server's current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Active reports whether the server is listening.
func (s *Server) Active() bool {
	return s.State() == StateListening
}

// SessionCount returns the number of currently registered live sessions.
func (s *Server) SessionCount() int {
	return s.sessions.Count()
}

// Addr returns the address the server is listening on, or nil when it is
// not listening. With an ephemeral port configuration the returned address
// carries the bound port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Start transitions the server from Idle to Listening, binds the listening
// endpoint, and launches the accept loop in its own goroutine. Start does
// not block on the accept loop. The transition commits only once the
// endpoint is bound; a failed bind leaves the server Idle.
//
// Returns:
//   - nil on success; ErrDisposed if the server was stopped;
//     ErrAlreadyStarted if it is already listening; the bind error otherwise
func (s *Server) Start() error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateListening)) {
		if s.State() == StateDisposed {
			return ErrDisposed
		}

		return ErrAlreadyStarted
	}

	lc := net.ListenConfig{Control: listenControl(s.cfg)}
	ln, err := lc.Listen(context.Background(), "tcp", s.cfg.Addr)
	if err != nil {
		s.state.CompareAndSwap(int32(StateListening), int32(StateIdle))
		if isShutdownNoise(err) {
			s.log.Warn("bind interrupted by teardown", logger.Field{Key: "addr", Value: s.cfg.Addr})
			return nil
		}

		s.log.Error("failed to bind", logger.Field{Key: "addr", Value: s.cfg.Addr}, logger.Field{Key: "error", Value: err})
		return fmt.Errorf("bind %s: %w", s.cfg.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if s.State() == StateDisposed {
		// Stop ran between the transition and the bind; release the
		// endpoint it could not see.
		s.closeListener()
		return ErrDisposed
	}

	s.log.Info("server listening",
		logger.Field{Key: "addr", Value: ln.Addr().String()},
		logger.Field{Key: "backlog", Value: s.cfg.Backlog})

	s.wg.Add(1)
	go s.acceptLoop(ln)

	return nil
}

// Stop transitions the server to Disposed, closes the listening endpoint,
// and closes every currently registered session, one at a time. It returns
// once every session's unit of work has ended, so SessionCount is zero and
// Active is false afterwards. Stop is idempotent.
//
// Returns:
//   - nil, or the first error during teardown that was not expected
//     shutdown noise
func (s *Server) Stop() error {
	prev := State(s.state.Swap(int32(StateDisposed)))
	if prev == StateDisposed {
		return nil
	}

	var firstErr error
	if err := s.closeListener(); err != nil && !isShutdownNoise(err) {
		s.log.Error("listener close failed", logger.Field{Key: "error", Value: err})
		firstErr = err
	}

	for _, sess := range s.sessions.Snapshot() {
		if err := sess.Close(); err != nil && !isShutdownNoise(err) {
			s.log.Error("session close failed",
				logger.Field{Key: "session", Value: sess.Key()},
				logger.Field{Key: "error", Value: err})
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	// Wait for the accept loop and every per-session unit to drain; each
	// unit deregisters its session on the way out.
	s.wg.Wait()

	s.log.Info("server stopped")
	return firstErr
}

// Pending reports whether a connection is waiting to be accepted. It is
// valid only while the server is listening.
//
// Returns:
//   - Whether a connection is waiting, and ErrInactive when the server is
//     not listening
func (s *Server) Pending() (bool, error) {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if !s.Active() || ln == nil {
		return false, ErrInactive
	}

	return pollPending(ln)
}

// closeListener releases the listening endpoint if held.
func (s *Server) closeListener() error {
	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()

	if ln == nil {
		return nil
	}

	return ln.Close()
}

// acceptLoop accepts connections while the server is listening, spawning an
// independent unit of work per connection. An accept failure caused by
// teardown ends the loop silently; anything else is logged and the loop
// keeps serving.
func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()

	for s.State() == StateListening {
		conn, err := ln.Accept()
		if err != nil {
			if s.State() != StateListening || isShutdownNoise(err) {
				return
			}

			s.log.Error("accept failed", logger.Field{Key: "error", Value: err})
			continue
		}

		s.metrics.ConnectionAccepted()
		sess := newSession(s.keys.Next(), conn, s, s.pool, s.dispatcher, s.log)

		s.wg.Add(1)
		go s.runSession(sess)
	}
}

// runSession is the fire-and-forget unit of work for one session: register,
// run the session to completion, deregister exactly once. Failures here are
// isolated from the accept loop and from every other session.
func (s *Server) runSession(sess *Session) {
	defer s.wg.Done()

	log := s.log.With(
		logger.Field{Key: "session", Value: sess.Key()},
		logger.Field{Key: "remote", Value: sess.RemoteAddr().String()})

	if !s.sessions.Add(sess.Key(), sess) {
		// Key collision should not occur given key generation; leave the
		// existing registration untouched.
		log.Warn("session key already registered, ignoring connection")
		close(sess.done)
		return
	}

	s.metrics.SessionStarted()

	if s.State() == StateDisposed {
		// Stop may have snapshotted before our registration; close
		// ourselves so the unit cannot outlive shutdown.
		_ = sess.Close()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("session unit panicked", logger.Field{Key: "panic", Value: r})
		}
	}()
	defer close(sess.done)
	defer func() {
		s.sessions.Remove(sess.Key())
		s.recentlyClosed.SetDefault(sess.Key().String(), time.Now())
		s.metrics.SessionEnded()
		log.Debug("session ended")
	}()
	defer func() {
		_ = sess.Close()
	}()

	log.Debug("session started")

	if err := sess.Start(); err != nil {
		switch {
		case isTimeout(err):
			log.Warn("session communication timed out", logger.Field{Key: "error", Value: err})
		case isShutdownNoise(err):
		default:
			log.Error("session failed", logger.Field{Key: "error", Value: err})
		}
	}
}

// SendTo looks up the session registered under key and forwards data to its
// Send. A miss is a soft failure: it is logged and counted, never raised.
//
// Parameters:
//   - key: The routing handle of the target session
//   - data: The bytes to send
func (s *Server) SendTo(key keygen.SessionKey, data []byte) {
	sess, ok := s.sessions.Get(key)
	if !ok {
		s.metrics.RoutingMiss()
		if _, recent := s.recentlyClosed.Get(key.String()); recent {
			s.log.Debug("dropped send to recently closed session", logger.Field{Key: "session", Value: key})
		} else {
			s.log.Warn("dropped send to unknown session", logger.Field{Key: "session", Value: key})
		}
		return
	}

	if err := sess.Send(data); err != nil {
		if !isShutdownNoise(err) {
			s.log.Error("send failed",
				logger.Field{Key: "session", Value: key},
				logger.Field{Key: "error", Value: err})
		}
		return
	}

	s.metrics.BytesSent(len(data))
}

// SendToSession sends data to the given session, re-resolving it through
// the registry by key rather than trusting the reference: a stale, already
// removed session is a soft-failure no-op just like an unknown key.
//
// Parameters:
//   - sess: The target session; nil is ignored
//   - data: The bytes to send
func (s *Server) SendToSession(sess *Session, data []byte) {
	if sess == nil {
		return
	}

	s.SendTo(sess.Key(), data)
}

// Broadcast sends data to every session live at the moment the snapshot is
// taken, sequentially in registry iteration order. A failed send is logged
// and does not prevent delivery to the remaining sessions, but a stalled
// session delays every session after it; there is no backpressure isolation
// between recipients.
//
// Parameters:
//   - data: The bytes to send to every live session
func (s *Server) Broadcast(data []byte) {
	s.metrics.Broadcast()

	for _, sess := range s.sessions.Snapshot() {
		if err := sess.Send(data); err != nil {
			if !isShutdownNoise(err) {
				s.log.Error("broadcast send failed",
					logger.Field{Key: "session", Value: sess.Key()},
					logger.Field{Key: "error", Value: err})
			}
			continue
		}

		s.metrics.BytesSent(len(data))
	}
}
