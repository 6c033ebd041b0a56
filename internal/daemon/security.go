package daemon

import (
	"fmt"
	"os"
)

// ErrRunningAsRoot is returned when the daemon detects it is running as root.
var ErrRunningAsRoot = fmt.Errorf("refusing to run as root (UID 0): running the flint daemon as root is a security risk")

// ErrInsecureDirectory is returned when the runtime directory has insecure permissions.
var ErrInsecureDirectory = fmt.Errorf("runtime directory has insecure permissions")

// CheckNotRoot verifies the daemon is not running as root (effective UID 0).
func CheckNotRoot() error {
	if os.Geteuid() == 0 {
		return ErrRunningAsRoot
	}
	return nil
}

// ValidateDirectoryPermissions checks that the given directory is exactly
// mode 0700 (owner read/write/execute only). A missing directory is fine;
// it will be created with the right permissions.
func ValidateDirectoryPermissions(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat directory %s: %w", dirPath, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dirPath)
	}

	perm := info.Mode().Perm()
	if perm != 0o700 {
		return fmt.Errorf("%w: %s has mode %o; expected exactly 0700",
			ErrInsecureDirectory, dirPath, perm)
	}

	return nil
}

// EnsureSecureDirectory creates a directory with mode 0700 if it doesn't
// exist, or tightens permissions if it does.
func EnsureSecureDirectory(dirPath string) error {
	info, err := os.Stat(dirPath)
	if os.IsNotExist(err) {
		return os.MkdirAll(dirPath, 0o700)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dirPath, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", dirPath)
	}

	if perm := info.Mode().Perm(); perm != 0o700 {
		if err := os.Chmod(dirPath, 0o700); err != nil {
			return fmt.Errorf("failed to fix permissions on %s: %w", dirPath, err)
		}
	}

	return nil
}
