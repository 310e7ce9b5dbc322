package manifests

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/gofrs/flock"
)

// ErrRunLocked is returned when another process holds the network's run lock
var ErrRunLocked = errors.New("another deploy run holds the lock")

const lockRetryDelay = 200 * time.Millisecond

// FileLocker takes an advisory lock file per network next to the manifests
type FileLocker struct {
	dir  string
	wait time.Duration
}

// NewFileLocker creates a locker. With wait > 0 it retries until the wait elapses.
func NewFileLocker(dir string, wait time.Duration) *FileLocker {
	return &FileLocker{dir: dir, wait: wait}
}

// ProvideFileLocker creates the locker from the runtime config
func ProvideFileLocker(cfg *config.RuntimeConfig) *FileLocker {
	return NewFileLocker(cfg.ManifestsDir, 0)
}

// Lock acquires the exclusive lock of a network
func (l *FileLocker) Lock(ctx context.Context, network string) (func() error, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifests directory: %w", err)
	}

	path := filepath.Join(l.dir, network+".lock")
	fl := flock.New(path)

	var locked bool
	var err error
	if l.wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, l.wait)
		defer cancel()
		locked, err = fl.TryLockContext(waitCtx, lockRetryDelay)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	} else {
		locked, err = fl.TryLock()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w for network %s (%s)", ErrRunLocked, network, path)
	}

	return fl.Unlock, nil
}
