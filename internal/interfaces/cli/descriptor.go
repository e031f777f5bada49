package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ideadist.dev/cli/internal/application/services"
	"ideadist.dev/cli/internal/core/domain"
)

// NewDescriptorCommand creates the descriptor command
func NewDescriptorCommand(container *CLIContainer) *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "descriptor",
		Short: "Generate the Ivy descriptor and print its path",
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

			result, err := app.Acquisition.Acquire(cmd.Context(), req)
			if err != nil {
				return err
			}

			if !show {
				fmt.Fprintln(cmd.OutOrStdout(), result.DescriptorPath)
				return nil
			}
			content, err := os.ReadFile(result.DescriptorPath)
			if err != nil {
				return fmt.Errorf("failed to read descriptor: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Print the descriptor document instead of its path")
	return cmd
}

// NewClasspathCommand creates the classpath command
func NewClasspathCommand(container *CLIContainer) *cobra.Command {
	var (
		configuration string
		lines         bool
	)

	cmd := &cobra.Command{
		Use:   "classpath",
		Short: "Print the files of one descriptor configuration",
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

			result, err := app.Acquisition.Acquire(cmd.Context(), req)
			if err != nil {
				return err
			}
			files, err := services.Classpath(result, domain.Configuration(configuration))
			if err != nil {
				return err
			}

			if lines {
				newPrinter(cmd.OutOrStdout()).lines(files)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(files, string(os.PathListSeparator)))
			return nil
		},
	}

	cmd.Flags().StringVar(&configuration, "configuration", string(domain.ConfigurationCompile), "Configuration: compile, sources or runtime")
	cmd.Flags().BoolVar(&lines, "lines", false, "Print one file per line")
	return cmd
}
