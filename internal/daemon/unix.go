package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mfriesel/flint/internal/config"
)

// UnixTransport implements Transport using unix domain sockets.
type UnixTransport struct {
	socketPath string
	listener   net.Listener
	mu         sync.Mutex
}

// NewUnixTransport creates a unix socket transport. An empty socketPath
// selects the default runtime location.
func NewUnixTransport(socketPath string) *UnixTransport {
	if socketPath == "" {
		socketPath = config.DefaultPaths().SocketFile()
	}
	return &UnixTransport{socketPath: socketPath}
}

// Listen creates and returns a listener for the unix socket. It ensures
// the parent directory exists with 0700 permissions and cleans up any
// stale socket file before listening.
func (t *UnixTransport) Listen() (net.Listener, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dir := filepath.Dir(t.socketPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	if err := t.cleanupStaleSocket(); err != nil {
		return nil, fmt.Errorf("failed to cleanup stale socket: %w", err)
	}

	listener, err := net.Listen("unix", t.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on socket: %w", err)
	}

	// Owner read/write only.
	if err := os.Chmod(t.socketPath, 0600); err != nil {
		listener.Close()
		os.Remove(t.socketPath)
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	t.listener = listener
	return listener, nil
}

// cleanupStaleSocket removes a socket file if it exists and is not
// responsive. This handles the case where a previous daemon crashed
// without cleanup.
func (t *UnixTransport) cleanupStaleSocket() error {
	_, err := os.Stat(t.socketPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat socket: %w", err)
	}

	conn, err := net.DialTimeout("unix", t.socketPath, 100*time.Millisecond)
	if err == nil {
		conn.Close()
		return fmt.Errorf("socket is active (another daemon may be running)")
	}

	if err := os.Remove(t.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}

// Dial connects to the unix socket with the specified timeout.
func (t *UnixTransport) Dial(timeout time.Duration) (net.Conn, error) {
	if _, err := os.Stat(t.socketPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("socket not found: %s", t.socketPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", t.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket: %w", err)
	}
	return conn, nil
}

// Close releases resources and removes the socket file.
func (t *UnixTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error

	if t.listener != nil {
		if err := t.listener.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close listener: %w", err))
		}
		t.listener = nil
	}

	if err := os.Remove(t.socketPath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove socket: %w", err))
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// SocketPath returns the path to the unix socket file.
func (t *UnixTransport) SocketPath() string {
	return t.socketPath
}

var _ Transport = (*UnixTransport)(nil)
