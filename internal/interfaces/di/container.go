package di

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"ideadist.dev/cli/internal/application/ports"
	"ideadist.dev/cli/internal/application/services"
	"ideadist.dev/cli/internal/core/domain"
	"ideadist.dev/cli/internal/infrastructure/archive"
	configinfra "ideadist.dev/cli/internal/infrastructure/config"
	"ideadist.dev/cli/internal/infrastructure/ivy"
	"ideadist.dev/cli/internal/infrastructure/lock"
	"ideadist.dev/cli/internal/infrastructure/logging"
	"ideadist.dev/cli/internal/infrastructure/repository"
	"ideadist.dev/cli/internal/interfaces/cli"
)

// Options controls where the container sends logs and progress
type Options struct {
	// Stderr receives logs and download progress. Defaults to os.Stderr.
	Stderr io.Writer
	// DisableProgress turns off the download progress bar.
	DisableProgress bool
	// Env replaces the process environment for configuration when not nil.
	Env map[string]string
}

// Container holds all application dependencies
type Container struct {
	// Configuration
	Config domain.Config

	// Infrastructure
	Resolver  *repository.HTTPResolver
	Extractor *archive.Extractor
	Locker    *lock.FileLocker
	Writer    *ivy.Writer

	// Application services
	Fetcher     *services.Fetcher
	Cache       *services.ExtractionCache
	Generator   *services.DescriptorGenerator
	Acquisition *services.AcquisitionService
	Sandbox     *services.SandboxService

	// CLI
	CLIContainer *cli.CLIContainer

	// Logger is replaced once configuration is loaded. Other goroutines use GetLogger.
	Logger *logging.HCLogGateway

	opts Options
	mu   sync.RWMutex
}

// NewContainer creates the dependency injection container. Components are
// wired once the CLI has parsed its flags and calls Configure.
func NewContainer(opts Options) *Container {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	c := &Container{
		Logger: logging.NewHCLogGateway(logging.Options{Name: "ideadist", Level: ports.LogLevelInfo, Output: opts.Stderr}),
		opts:   opts,
	}
	c.CLIContainer = &cli.CLIContainer{Configure: c.Configure}
	return c
}

// Configure loads configuration from every source and initializes all components
func (c *Container) Configure(ctx context.Context, loadOpts configinfra.LoadOptions) (*cli.Application, error) {
	if loadOpts.Env == nil {
		loadOpts.Env = c.opts.Env
	}

	cfg, snap, err := configinfra.NewUnifiedLoader(loadOpts).LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.initializeComponents(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return &cli.Application{
		Config:      cfg,
		Snapshot:    snap,
		Acquisition: c.Acquisition,
		Sandbox:     c.Sandbox,
		Logger:      c.Logger,
	}, nil
}

// initializeComponents initializes all components with proper dependencies
func (c *Container) initializeComponents(cfg domain.Config) error {
	c.Config = cfg

	// 1. Logging
	logger := logging.NewHCLogGateway(logging.Options{
		Name:   "ideadist",
		Level:  ports.LogLevel(cfg.LogLevel),
		JSON:   cfg.LogJSON,
		Output: c.opts.Stderr,
	})
	c.mu.Lock()
	c.Logger = logger
	c.mu.Unlock()

	// 2. Infrastructure
	var progress io.Writer
	if !c.opts.DisableProgress && !cfg.LogJSON {
		progress = c.opts.Stderr
	}
	resolver, err := repository.NewHTTPResolver(repository.Options{
		CacheDir:  cfg.CacheDir,
		Progress:  progress,
		UserAgent: "ideadist/" + cli.Version,
	})
	if err != nil {
		return err
	}
	c.Resolver = resolver
	c.Extractor = archive.NewExtractor()
	c.Locker = lock.NewFileLocker(0)
	c.Writer = ivy.NewWriter()

	// 3. Application services
	c.Fetcher = services.NewFetcher(c.Resolver, logger)
	c.Cache = services.NewExtractionCache(c.Extractor, c.Locker, logger)
	c.Generator = services.NewDescriptorGenerator(c.Writer, services.JDKToolsLocator(cfg.ToolsJar, ""), logger)
	c.Acquisition = services.NewAcquisitionService(c.Fetcher, c.Cache, c.Generator, logger, cfg.Timeout)
	c.Sandbox = services.NewSandboxService(logger)

	logger.LogDebug("Dependency injection container initialized", map[string]interface{}{
		"cache_dir":  cfg.CacheDir,
		"repository": cfg.RepositoryURL,
	})
	return nil
}

// GetLogger returns the current logger. Safe to call from any goroutine.
func (c *Container) GetLogger() ports.LoggingGateway {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Logger
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	c.GetLogger().LogDebug("Shutting down", nil)
	return nil
}

// GetVersion returns version information
func (c *Container) GetVersion() map[string]string {
	return map[string]string{
		"version":    cli.Version,
		"build_time": cli.BuildTime,
	}
}
