package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/gen3talk/internal/cli/ui"
	"github.com/aki/gen3talk/internal/codec"
)

var mailboxRecvCmd = &cobra.Command{
	Use:   "recv <id>",
	Short: "Take the response for a request id",
	Long: `Take the response for a request id, removing it from the mailbox as the
emulator script would, and print it decoded.`,
	Args: cobra.ExactArgs(1),
	RunE: runMailboxRecv,
}

// recvResult is the JSON shape of a received response
type recvResult struct {
	ID   string `json:"id"`
	Hex  string `json:"hex"`
	Text string `json:"text"`
}

func runMailboxRecv(cmd *cobra.Command, args []string) error {
	id := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, backend, closeBackend, err := openService(cmd.Context(), cfg, CreateQuietLogger())
	if err != nil {
		return err
	}
	defer closeBackend()

	payload, ok, err := backend.TakeResponse(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no response pending for %s", id)
	}

	result := recvResult{ID: id, Hex: codec.FormatHex(payload), Text: codec.Decode(payload)}
	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(result)
	}
	ui.OutputLine("%s", result.Text)
	ui.OutputLine("%s", ui.DimStyle.Render(result.Hex))
	return nil
}
