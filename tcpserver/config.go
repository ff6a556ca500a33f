package tcpserver

// Config holds the recognized server options. Each option affects only the
// corresponding collaborator or the listener bind; none alter core control
// flow.
type Config struct {
	// Addr is the "host:port" to listen on (e.g. ":7420"). Port 0 selects
	// an ephemeral port.
	Addr string

	// Backlog is the requested accept backlog. The value is advisory: the
	// standard library does not expose the listen(2) backlog, so the
	// kernel's configured maximum governs. Retained for operator visibility.
	Backlog int

	// ReuseAddr sets SO_REUSEADDR on the listening socket, allowing quick
	// rebinding across restarts and NAT traversal setups. No effect on
	// platforms without socket option control.
	ReuseAddr bool

	// InitialBufferCount is the number of receive buffers pre-allocated in
	// the shared buffer pool.
	InitialBufferCount int

	// ReceiveBufferSize is the byte size of each receive buffer.
	ReceiveBufferSize int
}

// DefaultConfig returns a Config with default values for the given listen
// address. Override fields as needed before passing to NewServer.
//
// Parameters:
//   - addr: The "host:port" to listen on
//
// Returns:
//   - A Config with defaults: Backlog 128, ReuseAddr false,
//     InitialBufferCount 32, ReceiveBufferSize 4096.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:               addr,
		Backlog:            128,
		ReuseAddr:          false,
		InitialBufferCount: 32,
		ReceiveBufferSize:  4096,
	}
}
