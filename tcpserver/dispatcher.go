package tcpserver

// Dispatcher receives per-session lifecycle callbacks. It is implemented by
// the embedding application. Callbacks are invoked from the session's own
// goroutine; implementations must be safe for concurrent use across
// sessions.
type Dispatcher interface {
	// OnSessionStarted is called once per session, after the session is
	// registered and its receive loop is live.
	//
	// Parameters:
	//   - session: The session that started
	OnSessionStarted(session *Session)

	// OnSessionDataReceived is called once per received chunk. The data
	// slice aliases a pooled buffer and is valid only for the synchronous
	// extent of the call; copy it if it must be retained.
	//
	// Parameters:
	//   - session: The originating session
	//   - data: The received bytes; valid only during the call
	OnSessionDataReceived(session *Session, data []byte)

	// OnSessionClosed is called exactly once per session when its lifecycle
	// ends, regardless of which side initiated closure.
	//
	// Parameters:
	//   - session: The session that closed
	OnSessionClosed(session *Session)
}

// nopDispatcher is used when no dispatcher is supplied so the server never
// has to nil-check before every callback.
type nopDispatcher struct{}

func (nopDispatcher) OnSessionStarted(*Session)              {}
func (nopDispatcher) OnSessionDataReceived(*Session, []byte) {}
func (nopDispatcher) OnSessionClosed(*Session)               {}
