package main

import (
	"os"

	"github.com/aki/gen3talk/internal/cli/commands"
	"github.com/aki/gen3talk/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		_ = ui.GlobalFormatter.OutputError(err)
		os.Exit(1)
	}
}
