package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"ideadist.dev/cli/internal/core/ports"
)

// DefaultRetryDelay is how often a contended lock is retried
const DefaultRetryDelay = 250 * time.Millisecond

// FileLocker implements ports.Locker with advisory file locks
type FileLocker struct {
	retryDelay time.Duration
}

// NewFileLocker creates a new file locker
func NewFileLocker(retryDelay time.Duration) *FileLocker {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &FileLocker{retryDelay: retryDelay}
}

// Lock acquires an exclusive lock on path, creating the lock file and its parent as needed
func (l *FileLocker) Lock(ctx context.Context, path string) (ports.Unlocker, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, l.retryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock %s: %w", path, ctx.Err())
	}
	return fl, nil
}

var _ ports.Locker = (*FileLocker)(nil)
