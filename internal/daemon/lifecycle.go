package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mfriesel/flint/internal/config"
)

// ErrNotRunning is returned by Stop when no daemon is found.
var ErrNotRunning = errors.New("daemon not running")

// Run starts the daemon and blocks until shutdown.
// It handles signals for lifecycle management:
//   - SIGTERM/SIGINT: graceful shutdown (drain connections, flush history,
//     remove socket and lock file)
//   - SIGHUP: rebuild the catalog index
//   - SIGPIPE: ignore (prevent crashes on broken pipe)
func Run(ctx context.Context, paths *config.Paths, cfg *ServerConfig) error {
	if err := CheckNotRoot(); err != nil {
		return err
	}

	if paths == nil {
		paths = config.DefaultPaths()
	}
	if err := EnsureSecureDirectory(paths.RuntimeDir); err != nil {
		return fmt.Errorf("failed to ensure secure runtime directory: %w", err)
	}

	// Acquire lock file to prevent double-start
	lockFile := NewLockFile(paths.LockFile())
	if err := lockFile.Acquire(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lockFile.Release()

	server, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signal.Ignore(syscall.SIGPIPE)

	sigChan := make(chan os.Signal, 4)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	go func() {
		for {
			select {
			case sig := <-sigChan:
				switch sig {
				case syscall.SIGTERM, syscall.SIGINT:
					server.logger.Info("received shutdown signal", "signal", sig)
					server.Shutdown()
					cancel()
					return

				case syscall.SIGHUP:
					server.logger.Info("received SIGHUP, rebuilding index")
					refreshCtx, refreshCancel := context.WithTimeout(ctx, refreshTimeout)
					if err := server.engine.Refresh(refreshCtx); err != nil {
						server.logger.Error("failed to rebuild index", "error", err)
					} else {
						server.logger.Info("index rebuilt", "items", server.engine.Index().Len())
					}
					refreshCancel()
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start server (blocking)
	return server.Start(ctx)
}

// IsRunning checks if the daemon is currently running.
func IsRunning(paths *config.Paths) bool {
	if paths == nil {
		paths = config.DefaultPaths()
	}

	pid, err := ReadPID(paths.PIDFile())
	if err != nil {
		// PID file missing/stale; fall through to lock-based detection.
		pid = 0
	}

	if pid > 0 && isProcessAlive(pid) {
		return true
	}

	// If the PID file is wrong, fall back to the held lock PID. This
	// handles cases where the daemon is alive but the PID file was
	// overwritten by a failed spawn attempt.
	lockPID, held, err := ReadHeldPID(paths.LockFile())
	if err != nil || !held || lockPID <= 0 {
		return false
	}
	return isProcessAlive(lockPID)
}

// ReadPID reads the PID from the PID file.
func ReadPID(pidPath string) (int, error) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, err
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, fmt.Errorf("invalid PID: %w", err)
	}

	return pid, nil
}

// Stop stops the running daemon by sending SIGTERM. If the daemon does
// not exit within 10 seconds it is killed.
func Stop(paths *config.Paths) error {
	if paths == nil {
		paths = config.DefaultPaths()
	}

	pid, err := ReadPID(paths.PIDFile())
	if err != nil || pid <= 0 {
		pid = 0
	}

	// If the PID file is stale, use the held lock PID.
	if pid > 0 && !isProcessAlive(pid) {
		pid = 0
	}
	if pid == 0 {
		lockPID, held, lerr := ReadHeldPID(paths.LockFile())
		if lerr != nil {
			return fmt.Errorf("failed to read PID and lock PID: %w", lerr)
		}
		if !held || lockPID <= 0 {
			return ErrNotRunning
		}
		pid = lockPID
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			// Force kill if graceful shutdown didn't work
			process.Kill()
			return nil
		case <-ticker.C:
			if !isProcessAlive(pid) {
				return nil
			}
		}
	}
}

// WaitForSocket waits for the daemon socket to appear. Returns an error
// if it is not available within the timeout.
func WaitForSocket(socketPath string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, err := os.Stat(socketPath); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("socket not available after %v", timeout)
		case <-ticker.C:
		}
	}
}
