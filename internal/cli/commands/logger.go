package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aki/gen3talk/internal/core/logger"
)

// Global flags for logging configuration
var (
	flagLogLevel  string
	flagLogFormat string
)

// RegisterLoggerFlags registers global logging flags
func RegisterLoggerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "pretty", "Log format (text, json, pretty)")
}

// CreateLogger creates a logger based on CLI flags. Logs always go to stderr
// so stdout stays usable for command output and the MCP stdio transport.
func CreateLogger() (logger.Logger, error) {
	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseFormat(flagLogFormat)
	if err != nil {
		return nil, err
	}

	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(os.Stderr),
	), nil
}

// CreateQuietLogger creates a logger that only shows warnings and errors
func CreateQuietLogger() logger.Logger {
	return logger.New(
		logger.WithQuiet(),
		logger.WithFormat(logger.FormatText),
		logger.WithOutput(os.Stderr),
	)
}
