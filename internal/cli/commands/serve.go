package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aki/gen3talk/internal/core/config"
	"github.com/aki/gen3talk/internal/dialogue"
	"github.com/aki/gen3talk/internal/filemanager"
)

var (
	serveProvider string
	serveJournal  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rewrite loop",
	Long: `Run the rewrite loop until interrupted.

Requests are consumed in arrival order, rewritten by the configured provider
and answered in the mailbox. Only one consumer may serve a file mailbox at a
time; a lock file next to the mailbox directory enforces this.`,
	Example: `  # Serve with the settings from gen3talk.yaml
  gen3talk serve

  # Use the dummy provider and keep a journal
  gen3talk serve --provider dummy --journal rewrites.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "Text generation provider (overrides dialogue.provider)")
	serveCmd.Flags().StringVar(&serveJournal, "journal", "", "Journal database path (overrides journal.path)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := CreateLogger()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveProvider != "" {
		cfg.Dialogue.Provider = serveProvider
	}
	if serveJournal != "" {
		cfg.Journal.Path = serveJournal
	}

	generator, err := dialogue.New(cfg.Dialogue.Provider)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IPC.Backend == config.BackendFile {
		lockPath := consumerLockPath(cfg.IPC.Dir)
		unlock, err := filemanager.NewManager(filemanager.WithLogger(log)).Lock(ctx, lockPath)
		if err != nil {
			if errors.Is(err, filemanager.ErrLocked) {
				return fmt.Errorf("another consumer is already serving %s", cfg.IPC.Dir)
			}
			return err
		}
		defer func() {
			if err := unlock(); err != nil {
				log.Warn("failed to release consumer lock", "path", lockPath, "error", err)
			}
		}()
	}

	svc, _, closeBackend, err := openService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	opts := []dialogue.Option{dialogue.WithLogger(log)}
	j, err := openJournal(cfg.Journal.Path)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		opts = append(opts, dialogue.WithRecorder(j))
	}

	loop := dialogue.NewLoop(svc, generator, dialogue.Config{
		PollInterval: cfg.IPC.PollInterval,
		MaxLen:       cfg.Codec.MaxLen,
		MinLength:    cfg.Dialogue.MinLength,
		MaxAttempts:  cfg.Dialogue.MaxAttempts,
		Backoff:      cfg.Dialogue.Backoff,
		WrapWidth:    cfg.Dialogue.WrapWidth,
	}, opts...)

	log.Info("serving mailbox",
		"backend", cfg.IPC.Backend,
		"dir", cfg.IPC.Dir,
		"provider", cfg.Dialogue.Provider,
		"ttl", cfg.IPC.TTLDuration(),
	)
	return loop.Run(ctx)
}

// consumerLockPath places the lock beside the mailbox, not inside it, so
// purging never touches it
func consumerLockPath(dir string) string {
	return filepath.Clean(dir) + ".lock"
}
