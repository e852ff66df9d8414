package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aki/gen3talk/internal/mcp"
)

var (
	mcpTransport string
	mcpPort      int
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server.

The server exposes the codec and the mailbox as tools. When rom.path or
journal.path is configured, ROM lookups and the rewrite history are offered
as well. Logs go to stderr so stdout stays free for the stdio transport.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpTransport, "transport", "t", mcp.TransportStdio, "Transport type (stdio, http)")
	mcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 3000, "Port for the http transport")
}

func runMCP(cmd *cobra.Command, args []string) error {
	log, err := CreateLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, backend, closeBackend, err := openService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	opts := []mcp.Option{
		mcp.WithTransport(mcpTransport, mcpPort),
		mcp.WithVersion(Version),
		mcp.WithLogger(log),
	}

	image, err := loadROM(cfg.ROM.Path)
	if err != nil {
		return err
	}
	if image != nil {
		opts = append(opts, mcp.WithROM(image))
	}

	j, err := openJournal(cfg.Journal.Path)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		opts = append(opts, mcp.WithHistory(j))
	}

	server, err := mcp.NewServer(backend, opts...)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Start(ctx)
}
