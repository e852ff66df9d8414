// Package commands implements the gen3talk command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/gen3talk/internal/cli/ui"
)

// Global flags
var (
	flagConfigPath   string
	flagOutputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "gen3talk",
	Short: "Rewrite Gen3 dialogue through a shared mailbox",
	Long: `gen3talk serves dialogue rewrites to an emulator script.

The script drops the encoded bytes of a dialogue string into a mailbox
directory. gen3talk decodes it, asks a text generator for a rewrite, encodes
the result and publishes it back for the script to pick up.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := ui.ParseFormat(flagOutputFormat)
		if err != nil {
			return err
		}
		return ui.SetGlobalFormatter(format)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "Configuration file (default gen3talk.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagOutputFormat, "output", "o", "pretty", "Output format (pretty, json)")
	RegisterLoggerFlags(rootCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mailboxCmd)
	rootCmd.AddCommand(codecCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
