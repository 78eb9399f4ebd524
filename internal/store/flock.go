package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout bounds how long AcquireRunLock waits for another run.
const DefaultLockTimeout = 2 * time.Second

// ErrLocked means another run holds the lock for the same working directory.
var ErrLocked = errors.New("another run is already active in this directory")

// RunLock is an exclusive lock held for the duration of a run.
type RunLock struct {
	fl *flock.Flock
}

// RunLockPath returns the lock file for workdir. Lock files live in the
// temp directory so the working tree stays clean.
func RunLockPath(workdir string) string {
	abs, err := filepath.Abs(workdir)
	if err != nil {
		abs = workdir
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "prfixer-"+hex.EncodeToString(sum[:8])+".lock")
}

// AcquireRunLock takes the run lock for workdir, waiting at most timeout.
func AcquireRunLock(ctx context.Context, workdir string, timeout time.Duration) (*RunLock, error) {
	return acquire(ctx, RunLockPath(workdir), timeout)
}

func acquire(ctx context.Context, lockPath string, timeout time.Duration) (*RunLock, error) {
	fl := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w (lock %s)", ErrLocked, lockPath)
		}
		return nil, fmt.Errorf("acquiring lock on %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, lockPath)
	}
	return &RunLock{fl: fl}, nil
}

// Path is the lock file path.
func (l *RunLock) Path() string {
	return l.fl.Path()
}

// Release unlocks. It is safe to call more than once.
func (l *RunLock) Release() error {
	if l == nil || l.fl == nil || !l.fl.Locked() {
		return nil
	}
	return l.fl.Unlock()
}
