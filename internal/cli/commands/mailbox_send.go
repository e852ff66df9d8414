package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aki/gen3talk/internal/cli/ui"
	"github.com/aki/gen3talk/internal/codec"
	"github.com/aki/gen3talk/internal/ipc"
)

var (
	sendID   string
	sendHex  bool
	sendWait time.Duration
)

var mailboxSendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Submit a request as the emulator script would",
	Long: `Submit a request as the emulator script would.

The text is encoded with the Gen3 table unless --hex is given, in which case
the argument is taken as raw bytes. With --wait the command polls for the
response and prints it.`,
	Example: `  # Submit a line and wait up to 10s for the rewrite
  gen3talk mailbox send "Hello there!" --wait 10s

  # Submit raw bytes under a fixed id
  gen3talk mailbox send --hex "FC 10 BB FF" --id req-1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMailboxSend,
}

func init() {
	mailboxSendCmd.Flags().StringVar(&sendID, "id", "", "Request id (generated when empty)")
	mailboxSendCmd.Flags().BoolVar(&sendHex, "hex", false, "Treat the argument as hex bytes")
	mailboxSendCmd.Flags().DurationVarP(&sendWait, "wait", "w", 0, "Wait this long for the response")
}

// sendResult is the JSON shape of a submitted request
type sendResult struct {
	ID       string `json:"id"`
	Request  string `json:"request_hex"`
	Response string `json:"response_hex,omitempty"`
	Text     string `json:"response_text,omitempty"`
}

func runMailboxSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var payload []byte
	if sendHex {
		payload, err = codec.ParseHex(strings.Join(args, " "))
		if err != nil {
			return err
		}
	} else {
		payload = codec.Encode(strings.Join(args, " "), cfg.Codec.MaxLen)
	}

	ctx := cmd.Context()
	svc, backend, closeBackend, err := openService(ctx, cfg, CreateQuietLogger())
	if err != nil {
		return err
	}
	defer closeBackend()

	id := sendID
	if id == "" {
		id = svc.GenerateID()
	}
	if err := backend.SubmitRequest(ctx, id, payload); err != nil {
		return err
	}
	result := sendResult{ID: id, Request: codec.FormatHex(payload)}

	if sendWait > 0 {
		response, err := waitForResponse(ctx, backend, id, sendWait, cfg.IPC.PollInterval)
		if err != nil {
			return err
		}
		result.Response = codec.FormatHex(response)
		result.Text = codec.Decode(response)
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(result)
	}
	ui.Success("Submitted request %s", id)
	ui.OutputLine("  %s %s", ui.DimStyle.Render("Bytes:"), result.Request)
	if result.Response != "" {
		ui.OutputLine("  %s %s", ui.DimStyle.Render("Response:"), result.Text)
		ui.OutputLine("  %s %s", ui.DimStyle.Render("Response bytes:"), result.Response)
	}
	return nil
}

// waitForResponse polls for the response to id until timeout
func waitForResponse(ctx context.Context, r ipc.Requester, id string, timeout, interval time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		payload, ok, err := r.TakeResponse(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("no response for %s within %s", id, timeout)
			}
			return nil, err
		}
		if ok {
			return payload, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("no response for %s within %s", id, timeout)
		case <-ticker.C:
		}
	}
}
