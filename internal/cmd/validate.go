package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/config"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a maestro configuration file",
		Long: `Parse and validate a configuration file, checking for:
  - Well-formed YAML and duration strings
  - Known log levels and asset failure policies
  - Thresholds within their valid ranges

With no argument, .maestro/config.yaml in the working directory is
validated; a missing file validates the built-in defaults.

Exit code: 0 if valid, 1 if errors found`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         validateCommand,
		SilenceUsage: true,
	}

	return cmd
}

// validateCommand implements the validate command logic
func validateCommand(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	var source string

	if len(args) == 1 {
		source = args[0]
		cfg, err = config.LoadConfig(source)
	} else {
		source = ".maestro/config.yaml"
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", source)
	fmt.Fprintf(cmd.OutOrStdout(), "  listen_addr:  %s\n", cfg.ListenAddr)
	fmt.Fprintf(cmd.OutOrStdout(), "  data_dir:     %s\n", cfg.DataDir)
	fmt.Fprintf(cmd.OutOrStdout(), "  log_level:    %s\n", cfg.LogLevel)
	fmt.Fprintf(cmd.OutOrStdout(), "  stage_timeout: %s, retry_budget: %d, refinement_cap: %d\n",
		cfg.Pipeline.StageTimeout, cfg.Pipeline.RetryBudget, cfg.Pipeline.RefinementCap)
	return nil
}
