package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"ideadist.dev/cli/internal/application/ports"
	"ideadist.dev/cli/internal/application/services"
	"ideadist.dev/cli/internal/core/domain"
	configdomain "ideadist.dev/cli/internal/core/domain/config"
	configinfra "ideadist.dev/cli/internal/infrastructure/config"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Application is everything a command needs once configuration is loaded
type Application struct {
	Config      domain.Config
	Snapshot    configdomain.Snapshot
	Acquisition *services.AcquisitionService
	Sandbox     *services.SandboxService
	Logger      ports.LoggingGateway
}

// Request builds the distribution request of the loaded configuration
func (a *Application) Request() (domain.DistributionRequest, error) {
	if a.Config.Version == "" {
		return domain.DistributionRequest{}, fmt.Errorf("no distribution version configured (use --version-id, IDEADIST_VERSION or the config file)")
	}
	return a.Config.Request()
}

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	// Configure loads configuration and wires the application. It is called
	// once flags are parsed.
	Configure func(ctx context.Context, opts configinfra.LoadOptions) (*Application, error)

	app *Application
}

// App returns the application wired for the current invocation
func (c *CLIContainer) App() (*Application, error) {
	if c.app == nil {
		return nil, fmt.Errorf("application is not configured")
	}
	return c.app, nil
}

// flagFields maps persistent flags to configuration fields
var flagFields = map[string]string{
	"version-id":     "version",
	"repository-url": "repository_url",
	"cache-dir":      "cache_dir",
	"log-level":      "log_level",
	"debug":          "debug",
	"plugins":        "bundled_plugins",
	"sources":        "download_sources",
	"consumer":       "consumer_name",
}

// NewRootCommand RootCommand represents the base command when called without any subcommands
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "ideadist",
		Short: "ideadist - IDE distribution fetcher and descriptor generator",
		Long: `ideadist downloads an IntelliJ IDEA distribution from a release-channel
repository, extracts it into a marker-guarded cache and generates a synthetic
Ivy descriptor exposing its libraries as compile, sources and runtime artifacts.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configure(cmd, container); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return nil
		},
	}

	// Set custom version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	// Add persistent flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file path (default is ./ideadist.yaml, ./ideadist.yml or ./ideadist.toml)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("version-id", "", "Distribution version, e.g. IC-2023.1 or IC-LATEST-EAP-SNAPSHOT")
	flags.String("repository-url", "", "Base repository URL (default "+domain.DefaultRepositoryURL+")")
	flags.String("cache-dir", "", "Download cache directory")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.StringSlice("plugins", nil, "Bundled plugins to include in the descriptor")
	flags.Bool("sources", true, "Resolve the sources archive")
	flags.String("consumer", "", "Consumer name used in the descriptor file name")

	// Add subcommands
	rootCmd.AddCommand(NewSetupCommand(container))
	rootCmd.AddCommand(NewFetchCommand(container))
	rootCmd.AddCommand(NewExtractCommand(container))
	rootCmd.AddCommand(NewDescriptorCommand(container))
	rootCmd.AddCommand(NewClasspathCommand(container))
	rootCmd.AddCommand(NewSandboxCommand(container))
	rootCmd.AddCommand(NewCleanCommand(container))
	rootCmd.AddCommand(NewConfigCommand(container))

	return rootCmd
}

// configure collects the flags the user set and wires the application
func configure(cmd *cobra.Command, container *CLIContainer) error {
	if container.Configure == nil {
		return fmt.Errorf("no configuration loader")
	}

	overrides := make(map[string]interface{})
	flags := cmd.Flags()
	for flag, field := range flagFields {
		f := flags.Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		switch flag {
		case "debug", "sources":
			v, _ := flags.GetBool(flag)
			overrides[field] = v
		case "plugins":
			v, _ := flags.GetStringSlice(flag)
			overrides[field] = v
		default:
			overrides[field] = f.Value.String()
		}
	}

	configPath, _ := flags.GetString("config")
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	app, err := container.Configure(cmd.Context(), configinfra.LoadOptions{
		ConfigPath: configPath,
		WorkDir:    workDir,
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}
	container.app = app
	return nil
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context, container *CLIContainer) {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
