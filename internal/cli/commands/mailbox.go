package commands

import (
	"github.com/spf13/cobra"
)

var mailboxCmd = &cobra.Command{
	Use:     "mailbox",
	Aliases: []string{"mb"},
	Short:   "Inspect and use the IPC mailbox",
	Long: `Inspect and use the IPC mailbox.

The mailbox holds request files written by the emulator script and response
files written by the rewrite loop. These commands act as the script would,
which is useful for testing the loop without an emulator.`,
}

func init() {
	mailboxCmd.AddCommand(mailboxListCmd)
	mailboxCmd.AddCommand(mailboxPendingCmd)
	mailboxCmd.AddCommand(mailboxSendCmd)
	mailboxCmd.AddCommand(mailboxRecvCmd)
	mailboxCmd.AddCommand(mailboxPurgeCmd)
}
