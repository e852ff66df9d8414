package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aki/gen3talk/internal/cli/ui"
	"github.com/aki/gen3talk/internal/core/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gen3talk configuration",
}

var (
	showFormat string
	initForce  bool
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the effective configuration, after defaults and environment
overrides (IPC_DIR, IPC_TTL, REDIS_URL, ROM_PATH) have been applied.`,
	Example: `  gen3talk config show
  gen3talk config show --format pretty`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&showFormat, "format", "yaml", "Output format (yaml, json, pretty)")
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd())
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch showFormat {
	case "json":
		return ui.GlobalFormatter.Output(cfg)
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}
		ui.Output("%s", string(data))
		return nil
	case "pretty":
		showConfigPretty(cfg)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", showFormat)
	}
}

func showConfigPretty(cfg *config.Config) {
	ui.OutputLine("Mailbox:")
	ui.OutputLine("  Backend: %s", cfg.IPC.Backend)
	if cfg.IPC.Backend == config.BackendRedis {
		ui.OutputLine("  URL: %s", cfg.IPC.Redis.URL)
		ui.OutputLine("  Prefix: %s", cfg.IPC.Redis.Prefix)
	} else {
		ui.OutputLine("  Directory: %s", cfg.IPC.Dir)
	}
	if cfg.IPC.TTL > 0 {
		ui.OutputLine("  TTL: %s", cfg.IPC.TTLDuration())
	} else {
		ui.OutputLine("  TTL: disabled")
	}
	ui.OutputLine("  Poll interval: %s", cfg.IPC.PollInterval)

	ui.OutputLine("\nDialogue:")
	ui.OutputLine("  Provider: %s", cfg.Dialogue.Provider)
	ui.OutputLine("  Attempts: %d (backoff %s)", cfg.Dialogue.MaxAttempts, cfg.Dialogue.Backoff)
	ui.OutputLine("  Minimum length: %d", cfg.Dialogue.MinLength)
	ui.OutputLine("  Wrap width: %d", cfg.Dialogue.WrapWidth)
	ui.OutputLine("  Max encoded length: %d", cfg.Codec.MaxLen)

	if cfg.Journal.Path != "" {
		ui.OutputLine("\nJournal: %s", cfg.Journal.Path)
	}
	if cfg.ROM.Path != "" {
		ui.OutputLine("ROM: %s", cfg.ROM.Path)
	}
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Validate the configuration file against the schema, then check the
backend settings that the schema cannot express.`,
		Example: `  gen3talk config validate
  gen3talk config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: validateConfig,
	}
	cmd.Flags().BoolP("verbose", "v", false, "Show detailed validation information")
	return cmd
}

func validateConfig(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.NewManager(flagConfigPath).Load()
	if err != nil {
		ui.Error("Configuration validation failed: %v", err)
		return fmt.Errorf("invalid configuration")
	}

	ui.Success("Configuration is valid")

	if verbose {
		ui.Info("Configuration details:")
		ui.Info("  Version: %s", cfg.Version)
		ui.Info("  Backend: %s", cfg.IPC.Backend)
		ui.Info("  Provider: %s", cfg.Dialogue.Provider)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	mgr := config.NewManager(flagConfigPath)
	if mgr.Exists() && !initForce {
		return fmt.Errorf("%s already exists; use --force to overwrite", mgr.GetConfigPath())
	}
	if err := mgr.Save(config.DefaultConfig()); err != nil {
		return err
	}
	ui.Success("Wrote %s", mgr.GetConfigPath())
	return nil
}
