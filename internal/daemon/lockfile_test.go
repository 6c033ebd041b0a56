package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockFile_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flintd.lock")
	lock := NewLockFile(path)

	require.NoError(t, lock.Acquire())

	// Our PID is recorded.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))

	require.NoError(t, lock.Release())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "release removes the lock file")
}

func TestLockFile_SecondAcquireFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flintd.lock")

	first := NewLockFile(path)
	require.NoError(t, first.Acquire())
	defer first.Release()

	second := NewLockFile(path)
	err := second.Acquire()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestLockFile_StaleLockRecovered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flintd.lock")

	// A lock file naming a dead PID with nobody holding the flock.
	require.NoError(t, os.WriteFile(path, []byte("999999999\n"), 0o600))

	lock := NewLockFile(path)
	require.NoError(t, lock.Acquire())
	require.NoError(t, lock.Release())
}

func TestLockFile_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "flintd.lock")

	lock := NewLockFile(path)
	require.NoError(t, lock.Acquire())
	defer lock.Release()

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestLockFile_ReleaseWithoutAcquire(t *testing.T) {
	lock := NewLockFile(filepath.Join(t.TempDir(), "flintd.lock"))
	assert.NoError(t, lock.Release())
}

func TestReadHeldPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flintd.lock")

	// No file at all.
	pid, held, err := ReadHeldPID(path)
	require.NoError(t, err)
	assert.False(t, held)
	assert.Zero(t, pid)

	// Held by us.
	lock := NewLockFile(path)
	require.NoError(t, lock.Acquire())
	pid, held, err = ReadHeldPID(path)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, os.Getpid(), pid)

	// Released.
	require.NoError(t, lock.Release())
	_, held, err = ReadHeldPID(path)
	require.NoError(t, err)
	assert.False(t, held)
}
