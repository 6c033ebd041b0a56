package daemon

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/execabs"

	"github.com/mfriesel/flint/internal/config"
)

// BinaryName is the daemon executable Spawn looks for.
const BinaryName = "flintd"

// spawnPollInterval paces the readiness probe in SpawnAndWait.
const spawnPollInterval = 50 * time.Millisecond

// FindBinary locates the flintd executable: $FLINT_DAEMON_PATH, the
// directory holding the current executable, $PATH, then the usual
// install prefixes. An explicitly set FLINT_DAEMON_PATH that does not
// exist is an error rather than a silent fallback.
func FindBinary() (string, error) {
	if path := os.Getenv("FLINT_DAEMON_PATH"); path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve FLINT_DAEMON_PATH: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("FLINT_DAEMON_PATH not usable: %w", err)
		}
		return abs, nil
	}

	// flint and flintd normally install side by side.
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), BinaryName)
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}

	if path, err := exec.LookPath(BinaryName); err == nil {
		if abs, err := filepath.Abs(path); err == nil {
			return abs, nil
		}
		return path, nil
	}

	candidates := []string{
		"/usr/local/bin/" + BinaryName,
		"/usr/bin/" + BinaryName,
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".local", "bin", BinaryName),
			filepath.Join(home, "go", "bin", BinaryName),
		)
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found next to flint, on PATH, or in install locations", BinaryName)
}

// Spawn starts flintd detached from the current process and returns its
// PID. Output goes to the configured daemon log file. Spawn does not
// wait for the daemon to accept connections; a second daemon racing an
// existing one loses the instance lock and exits on its own.
func Spawn(cfg *config.Config, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	bin, err := FindBinary()
	if err != nil {
		return 0, err
	}

	paths := config.DefaultPaths()
	logPath := ""
	if cfg != nil {
		logPath = cfg.Daemon.LogFile
	}
	if logPath == "" {
		logPath = paths.DaemonLogFile()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return 0, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		// A daemon with nowhere to log still beats no daemon.
		logFile, _ = os.Open(os.DevNull)
	}
	defer logFile.Close()

	// execabs refuses binaries that resolve to relative paths.
	cmd := execabs.Command(bin)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", BinaryName, err)
	}
	pid := cmd.Process.Pid

	// Best effort; the daemon rewrites this with its own PID once it
	// holds the instance lock.
	_ = os.WriteFile(paths.PIDFile(), []byte(strconv.Itoa(pid)), 0o644)

	logger.Debug("daemon spawned", "pid", pid, "binary", bin, "log", logPath)
	return pid, nil
}

// SpawnAndWait spawns flintd and blocks until it answers a ping or the
// timeout expires.
func SpawnAndWait(cfg *config.Config, logger *slog.Logger, timeout time.Duration) (int, error) {
	pid, err := Spawn(cfg, logger)
	if err != nil {
		return 0, err
	}

	socketPath := ""
	if cfg != nil {
		socketPath = cfg.Daemon.SocketPath
	}
	client := NewClient(ClientConfig{SocketPath: socketPath})

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(spawnPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline.C:
			return pid, fmt.Errorf("daemon (pid %d) did not answer within %v", pid, timeout)
		case <-ticker.C:
			if client.Ping() == nil {
				return pid, nil
			}
		}
	}
}
