package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfriesel/flint/internal/engine"
)

const (
	// DefaultDialTimeout keeps a dead daemon from stalling the frontend;
	// callers fall back to a local build when the dial fails.
	DefaultDialTimeout = 200 * time.Millisecond

	// DefaultRequestTimeout bounds one request/response round trip.
	DefaultRequestTimeout = 2 * time.Second
)

// Client talks to a running daemon. Each call dials a fresh connection,
// so a dead daemon fails fast and holds no state here.
type Client struct {
	transport      Transport
	dialTimeout    time.Duration
	requestTimeout time.Duration
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// SocketPath is the daemon socket ("" = default runtime path)
	SocketPath string

	// DialTimeout bounds the connection attempt (0 = DefaultDialTimeout)
	DialTimeout time.Duration

	// RequestTimeout bounds one round trip (0 = DefaultRequestTimeout)
	RequestTimeout time.Duration
}

// NewClient creates a daemon client. It does not connect; every request
// dials on its own.
func NewClient(cfg ClientConfig) *Client {
	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = DefaultDialTimeout
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &Client{
		transport:      NewUnixTransport(cfg.SocketPath),
		dialTimeout:    dialTimeout,
		requestTimeout: requestTimeout,
	}
}

// Ping checks that a daemon is answering on the socket.
func (c *Client) Ping() error {
	_, err := c.roundTrip(Request{Op: OpPing})
	return err
}

// Query asks the daemon to rank the current index against query.
func (c *Client) Query(query string, limit int) (engine.Results, error) {
	resp, err := c.roundTrip(Request{Op: OpQuery, Query: query, Limit: limit})
	if err != nil {
		return engine.Results{}, err
	}
	return resp.results(), nil
}

// Record asks the daemon to increment the usage count for identity.
func (c *Client) Record(identity string) error {
	_, err := c.roundTrip(Request{Op: OpRecord, Identity: identity})
	return err
}

// Refresh asks the daemon to rebuild its index.
func (c *Client) Refresh() error {
	_, err := c.roundTrip(Request{Op: OpRefresh})
	return err
}

// Stats fetches daemon runtime statistics.
func (c *Client) Stats() (*StatsPayload, error) {
	resp, err := c.roundTrip(Request{Op: OpStats})
	if err != nil {
		return nil, err
	}
	if resp.Stats == nil {
		return nil, fmt.Errorf("daemon returned no stats")
	}
	return resp.Stats, nil
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.transport.SocketPath()
}

// roundTrip sends one request and reads one response line.
func (c *Client) roundTrip(req Request) (Response, error) {
	conn, err := c.transport.Dial(c.dialTimeout)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	req.ID = uuid.NewString()

	if err := conn.SetDeadline(time.Now().Add(c.requestTimeout)); err != nil {
		return Response{}, fmt.Errorf("failed to set deadline: %w", err)
	}

	// Encode appends the newline that frames the request.
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Response{}, fmt.Errorf("failed to read response: %w", err)
		}
		return Response{}, fmt.Errorf("connection closed before response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return Response{}, fmt.Errorf("invalid response: %w", err)
	}
	if resp.ID != req.ID {
		return Response{}, fmt.Errorf("response ID mismatch: sent %s, got %s", req.ID, resp.ID)
	}
	if !resp.OK {
		return Response{}, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return resp, nil
}
