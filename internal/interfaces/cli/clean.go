package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCleanCommand creates the clean command
func NewCleanCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the extracted directory of the configured distribution",
		Long: `Remove the extracted cache directory of the configured distribution so the
next run extracts it again. The downloaded archive is kept.`,
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

			removed, err := app.Acquisition.Clean(cmd.Context(), req)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed extracted %s\n", req.Coordinate())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clean")
			}
			return nil
		},
	}
}
