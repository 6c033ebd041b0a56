// Package daemon implements the flintd background service: a warm catalog
// index served over a unix socket so frontends get per-keystroke ranking
// without paying the gather cost.
package daemon

import (
	"net"
	"time"
)

// Transport defines the IPC channel between frontends and the daemon.
type Transport interface {
	// Listen creates and returns a listener. The implementation is
	// responsible for creating any necessary directories and cleaning up
	// stale sockets.
	Listen() (net.Listener, error)

	// Dial connects to the transport with the specified timeout.
	Dial(timeout time.Duration) (net.Conn, error)

	// Close releases any resources held by the transport, including the
	// socket file.
	Close() error

	// SocketPath returns the path to the socket file.
	SocketPath() string
}
