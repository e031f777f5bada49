package cli

import (
	"github.com/spf13/cobra"

	"ideadist.dev/cli/internal/application/services"
)

// NewSetupCommand creates the setup command
func NewSetupCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Fetch, extract and describe the configured distribution",
		Long: `Resolve the configured distribution from its release channel, extract it
into the cache next to the archive and write the Ivy descriptor for the
configured consumer. Each step is skipped when its result is already present.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := container.App()
			if err != nil {
				return err
			}
			req, err := app.Request()
			if err != nil {
				return err
			}

			result, err := app.Acquisition.Acquire(cmd.Context(), req)
			if err != nil {
				return err
			}

			newPrinter(cmd.OutOrStdout()).result(result, services.RepositoryPatterns(result.Descriptor))
			return nil
		},
	}
}
