// Package config provides configuration management for flint.
package config

import (
	"os"
	"path/filepath"
)

// Paths holds the filesystem locations flint uses.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/flint)
	ConfigDir string

	// DataDir is the directory for durable data like the usage history
	// (~/.local/share/flint)
	DataDir string

	// RuntimeDir is the directory for runtime files: the daemon socket,
	// PID file and lock file
	RuntimeDir string
}

// DefaultPaths returns the default paths per the XDG Base Directory spec.
func DefaultPaths() *Paths {
	home := homeDir()

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join(home, ".flint", "run")
	} else {
		runtimeDir = filepath.Join(runtimeDir, "flint")
	}

	return &Paths{
		ConfigDir:  filepath.Join(configHome, "flint"),
		DataDir:    filepath.Join(dataHome, "flint"),
		RuntimeDir: runtimeDir,
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// HistoryFile returns the path to the usage history store.
func (p *Paths) HistoryFile() string {
	return filepath.Join(p.DataDir, "history")
}

// SocketFile returns the path to the daemon's unix socket.
func (p *Paths) SocketFile() string {
	return filepath.Join(p.RuntimeDir, "flintd.sock")
}

// PIDFile returns the path to the daemon PID file.
func (p *Paths) PIDFile() string {
	return filepath.Join(p.RuntimeDir, "flintd.pid")
}

// LockFile returns the path to the daemon single-instance lock.
func (p *Paths) LockFile() string {
	return filepath.Join(p.RuntimeDir, "flintd.lock")
}

// DaemonLogFile returns where a background-spawned daemon writes its logs.
func (p *Paths) DaemonLogFile() string {
	return filepath.Join(p.RuntimeDir, "flintd.log")
}

// EnsureDirectories creates the config and data directories. The runtime
// directory is created by the daemon with its stricter permissions.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}
