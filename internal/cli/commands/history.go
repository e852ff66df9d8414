package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/gen3talk/internal/cli/ui"
)

var (
	historyLimit   int
	historyJournal string
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"log"},
	Short:   "Show recent rewrites from the journal",
	Args:    cobra.NoArgs,
	RunE:    runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().StringVar(&historyJournal, "journal", "", "Journal database path (overrides journal.path)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := historyJournal
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Journal.Path
	}
	if path == "" {
		return fmt.Errorf("no journal configured; set journal.path or use --journal")
	}

	j, err := openJournal(path)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(entries)
	}
	ui.PrintHistory(entries)
	return nil
}
