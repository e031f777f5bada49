package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFetchCommand creates the fetch command
func NewFetchCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the configured distribution archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := container.App()
			if err != nil {
				return err
			}
			req, err := app.Request()
			if err != nil {
				return err
			}

			archive, err := app.Acquisition.Fetch(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), archive)
			return nil
		},
	}
}

// NewExtractCommand creates the extract command
func NewExtractCommand(container *CLIContainer) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Extract an archive into its cache directory",
		Long: `Extract a local .zip or .tar.gz archive into the directory next to it named
after the archive without its extension. Nothing happens when that directory
already holds a completed extraction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := container.App()
			if err != nil {
				return err
			}

			if list {
				entries, err := app.Acquisition.List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, e := range entries {
					if !e.IsDir {
						fmt.Fprintf(cmd.OutOrStdout(), "%10d  %s\n", e.Size, e.Name)
					}
				}
				return nil
			}

			cached, err := app.Acquisition.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cached.Directory)
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List the archive entries without extracting")
	return cmd
}
