package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSandboxCommand creates the sandbox command
func NewSandboxCommand(container *CLIContainer) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Prepare an isolated IDE sandbox and print the JVM arguments for tests",
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

			if dir == "" {
				dir = app.Config.SandboxDir
			}
			env, err := app.Sandbox.Prepare(result, dir)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			p.lines(env.JVMArgs())
			fmt.Fprintf(cmd.OutOrStdout(), "-cp %s\n", env.ClasspathString())
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Sandbox directory (default from sandbox_dir)")
	return cmd
}
