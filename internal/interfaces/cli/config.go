package cli

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command
func NewConfigCommand(container *CLIContainer) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect the configuration ideadist resolved from flags, IDEADIST_*
environment variables, the config file and built-in defaults.`,
	}

	configCmd.AddCommand(NewConfigShowCommand(container))

	return configCmd
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := container.App()
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			p.title("Current Configuration")
			p.snapshot(app.Snapshot)
			return nil
		},
	}
}
