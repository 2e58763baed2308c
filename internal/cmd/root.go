package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for maestro
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maestro",
		Short: "Intent routing, planning, and staged content orchestration",
		Long: `Maestro turns free-text work requests into costed execution plans and
runs them through a staged pipeline: research, creative drafting, quality
review with refinement, asset selection, and formatting.

Plans are shown for confirmation before any billable stage runs. Execution
state is persisted after every stage, so interrupted tasks resume where
they stopped.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewClassifyCommand())
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())

	return cmd
}
