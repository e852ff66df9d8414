package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aki/gen3talk/internal/cli/ui"
	"github.com/aki/gen3talk/internal/core/config"
	"github.com/aki/gen3talk/internal/core/mailbox"
)

var mailboxListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every file in the mailbox directory",
	Long: `List every file in the mailbox directory with its kind, size and age.

Only the file backend has a directory to list; use 'mailbox pending' with the
redis backend.`,
	Args: cobra.NoArgs,
	RunE: runMailboxList,
}

var mailboxPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List request ids with a response waiting",
	Args:  cobra.NoArgs,
	RunE:  runMailboxPending,
}

var mailboxPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove mailbox entries older than the TTL",
	Args:  cobra.NoArgs,
	RunE:  runMailboxPurge,
}

// fileMailbox returns the configured file mailbox without initializing it,
// so inspection never creates the directory or purges entries
func fileMailbox() (*mailbox.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.IPC.Backend != config.BackendFile {
		return nil, fmt.Errorf("the %s backend has no mailbox directory", cfg.IPC.Backend)
	}
	m := mailbox.NewManager(cfg.IPC.Dir,
		mailbox.WithTTL(cfg.IPC.TTLDuration()),
		mailbox.WithLogger(CreateQuietLogger()),
	)
	if _, err := os.Stat(m.Dir()); err != nil {
		return nil, fmt.Errorf("mailbox directory not found: %s", m.Dir())
	}
	return m, nil
}

func runMailboxList(cmd *cobra.Command, args []string) error {
	m, err := fileMailbox()
	if err != nil {
		return err
	}

	entries, err := m.Entries(cmd.Context())
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		if entries == nil {
			entries = []mailbox.Entry{}
		}
		return ui.GlobalFormatter.Output(entries)
	}
	ui.OutputLine("%s %s", ui.DimStyle.Render("Directory:"), m.Dir())
	ui.PrintEntries(entries)
	return nil
}

func runMailboxPending(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, _, closeBackend, err := openService(cmd.Context(), cfg, CreateQuietLogger())
	if err != nil {
		return err
	}
	defer closeBackend()

	ids, err := svc.ListPending(cmd.Context())
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(ids)
	}
	ui.PrintPending(ids)
	return nil
}

func runMailboxPurge(cmd *cobra.Command, args []string) error {
	m, err := fileMailbox()
	if err != nil {
		return err
	}
	if m.TTL() <= 0 {
		ui.Info("Purging is disabled (ttl is 0)")
		return nil
	}

	removed, err := m.Purge(cmd.Context())
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(map[string]int{"removed": removed})
	}
	ui.Success("Removed %d stale entries", removed)
	return nil
}
