package commands

import (
	"context"
	"fmt"

	"github.com/aki/gen3talk/internal/core/config"
	"github.com/aki/gen3talk/internal/core/logger"
	"github.com/aki/gen3talk/internal/core/mailbox"
	"github.com/aki/gen3talk/internal/ipc"
	"github.com/aki/gen3talk/internal/ipc/redisbox"
	"github.com/aki/gen3talk/internal/journal"
	"github.com/aki/gen3talk/internal/rom"
)

// peerBackend is a backend that also offers the peer-side operations
type peerBackend interface {
	ipc.Backend
	ipc.Requester
}

// loadConfig loads the configuration selected by --config
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewManager(flagConfigPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openService creates the configured backend, initializes it through
// ipc.Open and returns the Service together with the backend, whose
// peer-side operations the mailbox commands use. The returned function
// releases the backend's resources.
func openService(ctx context.Context, cfg *config.Config, log logger.Logger) (*ipc.Service, peerBackend, func() error, error) {
	backend, closeBackend, err := newBackend(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := ipc.Open(ctx, backend)
	if err != nil {
		_ = closeBackend()
		return nil, nil, nil, err
	}
	return svc, backend, closeBackend, nil
}

// newBackend creates the configured backend without initializing it
func newBackend(cfg *config.Config, log logger.Logger) (peerBackend, func() error, error) {
	switch cfg.IPC.Backend {
	case config.BackendRedis:
		b, err := redisbox.New(redisbox.Config{
			URL:    cfg.IPC.Redis.URL,
			Prefix: cfg.IPC.Redis.Prefix,
			TTL:    cfg.IPC.TTLDuration(),
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil

	case config.BackendFile, "":
		m := mailbox.NewManager(cfg.IPC.Dir,
			mailbox.WithTTL(cfg.IPC.TTLDuration()),
			mailbox.WithLogger(log),
		)
		return m, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend: %s", cfg.IPC.Backend)
	}
}

// openJournal opens the configured journal, or returns nil when none is set
func openJournal(path string) (*journal.Journal, error) {
	if path == "" {
		return nil, nil
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, nil
}

// loadROM loads the image at path, or returns nil when path is empty
func loadROM(path string) (*rom.Image, error) {
	if path == "" {
		return nil, nil
	}
	return rom.Load(path)
}
