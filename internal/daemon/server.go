package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfriesel/flint/internal/engine"
)

// Version is set at build time
var Version = "dev"

const (
	writeTimeout   = 5 * time.Second
	refreshTimeout = 30 * time.Second
)

// Server answers frontend requests against a warm engine.
type Server struct {
	engine    *engine.Engine
	transport Transport
	pidFile   string
	logger    *slog.Logger

	listener net.Listener

	// Lifecycle
	startTime       time.Time
	idleTimeout     time.Duration
	flushInterval   time.Duration
	refreshInterval time.Duration
	shutdownChan    chan struct{}
	shutdownOnce    sync.Once
	wg              sync.WaitGroup

	// Open connections, closed out on shutdown
	connMu sync.Mutex
	connWG sync.WaitGroup
	conns  map[net.Conn]struct{}

	// Metrics
	mu            sync.RWMutex
	lastActivity  time.Time
	queriesServed int64
}

// ServerConfig contains configuration options for the daemon server.
type ServerConfig struct {
	// Engine answers queries (required). It should be refreshed once
	// before the server starts accepting.
	Engine *engine.Engine

	// Transport is the IPC channel (optional, unix socket at the default
	// runtime path if nil)
	Transport Transport

	// PIDFile is written on start and removed on shutdown (optional)
	PIDFile string

	// Logger is the structured logger (optional, uses default if nil)
	Logger *slog.Logger

	// IdleTimeout is the duration after which the daemon exits if no
	// requests arrive and no connections are open. 0 disables the idle
	// watcher.
	IdleTimeout time.Duration

	// FlushInterval is how often usage history is flushed to disk.
	// 0 flushes only on shutdown.
	FlushInterval time.Duration

	// RefreshInterval is how often the index is rebuilt to pick up
	// installs and removals the watcher missed. 0 disables it.
	RefreshInterval time.Duration
}

// NewServer creates a new daemon server with the given configuration.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	transport := cfg.Transport
	if transport == nil {
		transport = NewUnixTransport("")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := time.Now()
	return &Server{
		engine:          cfg.Engine,
		transport:       transport,
		pidFile:         cfg.PIDFile,
		logger:          logger,
		startTime:       now,
		lastActivity:    now,
		idleTimeout:     cfg.IdleTimeout,
		flushInterval:   cfg.FlushInterval,
		refreshInterval: cfg.RefreshInterval,
		shutdownChan:    make(chan struct{}),
		conns:           make(map[net.Conn]struct{}),
	}, nil
}

// Start listens on the transport and serves requests until ctx is
// canceled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := s.transport.Listen()
	if err != nil {
		return err
	}
	s.listener = listener

	if s.pidFile != "" {
		if err := s.writePIDFile(); err != nil {
			listener.Close()
			return fmt.Errorf("failed to write PID file: %w", err)
		}
	}

	s.logger.Info("daemon starting",
		"socket", s.transport.SocketPath(),
		"pid", os.Getpid(),
		"version", Version,
	)

	if s.idleTimeout > 0 {
		s.wg.Add(1)
		go s.watchIdle(ctx)
	}

	if s.flushInterval > 0 {
		s.wg.Add(1)
		go s.flushLoop(ctx)
	}

	if s.refreshInterval > 0 {
		s.wg.Add(1)
		go s.refreshLoop(ctx)
	}

	errChan := make(chan error, 1)
	go s.acceptLoop(errChan)

	select {
	case <-ctx.Done():
		s.Shutdown()
		<-errChan
		return nil
	case err := <-errChan:
		s.Shutdown()
		return err
	}
}

// acceptLoop accepts connections until the listener closes.
func (s *Server) acceptLoop(errChan chan<- error) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				errChan <- nil
			} else {
				errChan <- fmt.Errorf("accept error: %w", err)
			}
			return
		}

		s.connMu.Lock()
		s.conns[conn] = struct{}{}
		s.connMu.Unlock()

		s.connWG.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn serves one connection. A frontend may hold its connection
// open and send many requests, one JSON object per line.
func (s *Server) handleConn(conn net.Conn) {
	defer s.connWG.Done()
	defer func() {
		conn.Close()
		s.connMu.Lock()
		delete(s.conns, conn)
		s.connMu.Unlock()
	}()

	logger := s.logger.With("session", uuid.NewString())
	logger.Debug("connection opened")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		s.touchActivity()

		var req Request
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			resp = Response{OK: false, Error: fmt.Sprintf("invalid request: %v", err)}
		} else {
			resp = s.handle(logger, req)
		}

		data, err := json.Marshal(resp)
		if err != nil {
			logger.Error("failed to marshal response", "error", err)
			return
		}

		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			logger.Debug("failed to set write deadline", "error", err)
			return
		}
		if _, err := conn.Write(append(data, '\n')); err != nil {
			logger.Debug("failed to write response", "error", err)
			return
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		logger.Debug("connection read ended", "error", err)
	}
	logger.Debug("connection closed")
}

// handle dispatches one request.
func (s *Server) handle(logger *slog.Logger, req Request) Response {
	switch req.Op {
	case OpPing:
		return Response{ID: req.ID, OK: true}

	case OpQuery:
		start := time.Now()
		res := s.engine.Query(req.Query, req.Limit)
		s.incrementQueries()
		logger.Debug("query served",
			"query", req.Query,
			"matches", len(res.Matches),
			"expression", res.Expression != nil,
			"duration", time.Since(start),
		)
		return resultsResponse(req.ID, res)

	case OpRecord:
		s.engine.Record(req.Identity)
		logger.Debug("usage recorded", "identity", req.Identity)
		return Response{ID: req.ID, OK: true}

	case OpRefresh:
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := s.engine.Refresh(ctx); err != nil {
			return Response{ID: req.ID, OK: false, Error: fmt.Sprintf("refresh failed: %v", err)}
		}
		logger.Info("index refreshed on request", "items", s.engine.Index().Len())
		return Response{ID: req.ID, OK: true}

	case OpStats:
		return Response{ID: req.ID, OK: true, Stats: s.stats()}

	default:
		return Response{ID: req.ID, OK: false, Error: fmt.Sprintf("unknown op: %q", req.Op)}
	}
}

func (s *Server) stats() *StatsPayload {
	return &StatsPayload{
		Items:          s.engine.Index().Len(),
		HistoryEntries: len(s.engine.History().Entries()),
		UptimeSecs:     int64(time.Since(s.startTime).Seconds()),
		QueriesServed:  s.getQueriesServed(),
		PID:            os.Getpid(),
	}
}

// Shutdown gracefully shuts down the server: stop accepting, drain open
// connections, flush history, remove socket and PID file.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.logger.Info("daemon shutting down")

		close(s.shutdownChan)

		if s.listener != nil {
			s.listener.Close()
		}

		// Unblock connection readers so the drain cannot hang on idle
		// frontends.
		s.connMu.Lock()
		for conn := range s.conns {
			conn.SetReadDeadline(time.Now())
		}
		s.connMu.Unlock()

		s.connWG.Wait()
		s.wg.Wait()

		if err := s.engine.Flush(); err != nil {
			s.logger.Error("failed to flush history on shutdown", "error", err)
		}

		if err := s.transport.Close(); err != nil {
			s.logger.Warn("failed to close transport", "error", err)
		}

		if s.pidFile != "" {
			if err := os.Remove(s.pidFile); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("failed to remove PID file", "path", s.pidFile, "error", err)
			}
		}

		s.logger.Info("daemon stopped")
	})
}

// writePIDFile writes the current process ID to the PID file.
func (s *Server) writePIDFile() error {
	return os.WriteFile(s.pidFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0600)
}

// touchActivity updates the last activity timestamp.
func (s *Server) touchActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *Server) getLastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

func (s *Server) incrementQueries() {
	s.mu.Lock()
	s.queriesServed++
	s.mu.Unlock()
}

func (s *Server) getQueriesServed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queriesServed
}

func (s *Server) openConns() int {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return len(s.conns)
}

// watchIdle monitors for idle timeout and initiates shutdown.
func (s *Server) watchIdle(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdownChan:
			return
		case <-ticker.C:
			if s.openConns() == 0 {
				since := time.Since(s.getLastActivity())
				if since > s.idleTimeout {
					s.logger.Info("idle timeout reached",
						"idle_duration", since,
						"timeout", s.idleTimeout,
					)
					go s.Shutdown()
					return
				}
			}
		}
	}
}

// flushLoop periodically flushes the usage history to disk.
func (s *Server) flushLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdownChan:
			return
		case <-ticker.C:
			if err := s.engine.Flush(); err != nil {
				s.logger.Warn("periodic history flush failed", "error", err)
			}
		}
	}
}

// refreshLoop periodically rebuilds the index. Queries keep answering
// from the old index while a rebuild runs.
func (s *Server) refreshLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdownChan:
			return
		case <-ticker.C:
			rctx, cancel := context.WithTimeout(ctx, refreshTimeout)
			if err := s.engine.Refresh(rctx); err != nil {
				s.logger.Warn("periodic refresh failed", "error", err)
			}
			cancel()
		}
	}
}
