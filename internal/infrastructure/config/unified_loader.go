package configinfra

import (
	"context"
	"fmt"
	"strings"

	"ideadist.dev/cli/internal/core/domain"
	configdomain "ideadist.dev/cli/internal/core/domain/config"
	configports "ideadist.dev/cli/internal/core/ports/config"
)

// LoadOptions selects the sources of a load
type LoadOptions struct {
	// ConfigPath is an explicit config file. Empty means discovery in WorkDir.
	ConfigPath string
	WorkDir    string
	// Overrides are command line values keyed by config field.
	Overrides map[string]interface{}
	// Env replaces the process environment when not nil.
	Env map[string]string
}

// UnifiedLoader merges every configuration source by priority
type UnifiedLoader struct {
	loaders   []configports.Loader
	validator configports.Validator
}

// NewUnifiedLoader creates a loader over defaults, config file, environment and flags
func NewUnifiedLoader(opts LoadOptions) *UnifiedLoader {
	env := NewEnvLoader()
	if opts.Env != nil {
		env = NewEnvLoaderFrom(opts.Env)
	}
	return &UnifiedLoader{
		loaders: []configports.Loader{
			NewDefaultsLoader(),
			NewFileLoader(opts.ConfigPath, opts.WorkDir),
			env,
			NewFlagLoader(opts.Overrides),
		},
		validator: NewConfigValidator(),
	}
}

// AddLoader adds a custom configuration source
func (l *UnifiedLoader) AddLoader(loader configports.Loader) {
	l.loaders = append(l.loaders, loader)
}

// Load merges all sources into one snapshot and validates it
func (l *UnifiedLoader) Load(ctx context.Context) (configdomain.Snapshot, error) {
	merged := make(configdomain.Snapshot)
	for _, loader := range l.loaders {
		snap, err := loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s config: %w", loader.Name(), err)
		}
		merged.Merge(snap)
	}

	if err := l.validator.Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadConfig loads and resolves the configuration in one step
func (l *UnifiedLoader) LoadConfig(ctx context.Context) (domain.Config, configdomain.Snapshot, error) {
	snap, err := l.Load(ctx)
	if err != nil {
		return domain.Config{}, nil, err
	}
	cfg, err := Resolve(snap)
	return cfg, snap, err
}

// Resolve turns a merged snapshot into an immutable configuration. Fields
// missing from the snapshot keep their defaults. Debug forces the debug level.
func Resolve(snap configdomain.Snapshot) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	setString := func(field string, dst *string) {
		if _, ok := snap[field]; ok {
			*dst = snap.String(field)
		}
	}
	setBool := func(field string, dst *bool) error {
		if _, ok := snap[field]; !ok {
			return nil
		}
		v, err := snap.Bool(field)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}

	setString("version", &cfg.Version)
	setString("repository_url", &cfg.RepositoryURL)
	setString("cache_dir", &cfg.CacheDir)
	setString("consumer_name", &cfg.ConsumerName)
	setString("tools_jar", &cfg.ToolsJar)
	setString("sandbox_dir", &cfg.SandboxDir)
	setString("log_level", &cfg.LogLevel)

	for field, dst := range map[string]*bool{
		"download_sources": &cfg.DownloadSources,
		"log_json":         &cfg.LogJSON,
		"debug":            &cfg.Debug,
	} {
		if err := setBool(field, dst); err != nil {
			return domain.Config{}, err
		}
	}

	if _, ok := snap["bundled_plugins"]; ok {
		cfg.BundledPlugins = snap.Strings("bundled_plugins")
	}
	if _, ok := snap["timeout"]; ok {
		timeout, err := snap.Duration("timeout")
		if err != nil {
			return domain.Config{}, err
		}
		cfg.Timeout = timeout
	}

	var err error
	if cfg.CacheDir, err = domain.ExpandHome(cfg.CacheDir); err != nil {
		return domain.Config{}, err
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
