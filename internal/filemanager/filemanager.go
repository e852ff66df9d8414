// Package filemanager provides the file primitives the mailbox is built on:
// atomic publish through a temporary file, rename-based claiming, and an
// advisory process lock.
package filemanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/aki/gen3talk/internal/core/logger"
)

// ErrLocked is returned when another process holds a lock
var ErrLocked = errors.New("lock is held by another process")

// DefaultPerm restricts files to the owning user
const DefaultPerm os.FileMode = 0o600

// Manager performs atomic file operations
type Manager struct {
	perm        os.FileMode
	lockTimeout time.Duration
	logger      logger.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithPerm sets the mode applied to published files
func WithPerm(perm os.FileMode) Option {
	return func(m *Manager) {
		m.perm = perm
	}
}

// WithLockTimeout sets how long Lock waits for a held lock
func WithLockTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.lockTimeout = timeout
	}
}

// WithLogger sets the logger used for non-fatal failures
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a file manager with owner-only permissions
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		perm:        DefaultPerm,
		lockTimeout: 0,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Publish writes data to tempPath, syncs it, and renames it onto path. A
// reader of path sees either the previous content or all of data. The
// temporary file is removed on every failure path. tempPath must not exist.
func (m *Manager) Publish(path, tempPath string, data []byte) (err error) {
	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, m.perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	published := false
	defer func() {
		if f != nil {
			_ = f.Close()
		}
		if !published {
			if rmErr := os.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
				m.logger.Warn("failed to remove temp file", "path", tempPath, "error", rmErr)
			}
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	closeErr := f.Close()
	f = nil
	if closeErr != nil {
		return fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	if err := atomicRename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	published = true

	if err := os.Chmod(path, m.perm); err != nil {
		m.logger.Warn("failed to restrict file permissions", "path", path, "error", err)
	}
	return nil
}

// Claim renames src to dst. Only one of several concurrent claimers of the
// same src succeeds; the others get an error satisfying os.IsNotExist.
func (m *Manager) Claim(src, dst string) error {
	return os.Rename(src, dst)
}

// ReadFile reads a whole file, retrying transient sharing violations where
// the platform has them.
func (m *Manager) ReadFile(path string) ([]byte, error) {
	return readFileWithRetry(path)
}

// Remove deletes path. A missing file is not an error.
func (m *Manager) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Lock acquires an exclusive advisory lock on path, creating it if needed.
// With a zero lock timeout it fails immediately with ErrLocked when the lock
// is held. The returned function releases the lock.
func (m *Manager) Lock(ctx context.Context, path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := flock.New(path)

	var locked bool
	var err error
	if m.lockTimeout <= 0 {
		locked, err = lock.TryLock()
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, m.lockTimeout)
		defer cancel()
		locked, err = lock.TryLockContext(lockCtx, 100*time.Millisecond)
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	return lock.Unlock, nil
}
