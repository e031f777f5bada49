package configinfra

import (
	"context"

	"ideadist.dev/cli/internal/core/domain"
	configdomain "ideadist.dev/cli/internal/core/domain/config"
	configports "ideadist.dev/cli/internal/core/ports/config"
)

// StaticLoader returns a fixed set of values at one priority. It serves both
// built-in defaults and command line overrides.
type StaticLoader struct {
	name     string
	priority int
	values   map[string]interface{}
}

// NewDefaultsLoader returns the built-in defaults (priority 5)
func NewDefaultsLoader() *StaticLoader {
	d := domain.DefaultConfig()
	return &StaticLoader{
		name:     "default",
		priority: configdomain.PriorityDefault,
		values: map[string]interface{}{
			"repository_url":   d.RepositoryURL,
			"download_sources": d.DownloadSources,
			"cache_dir":        d.CacheDir,
			"consumer_name":    d.ConsumerName,
			"sandbox_dir":      d.SandboxDir,
			"timeout":          d.Timeout,
			"log_level":        d.LogLevel,
			"log_json":         d.LogJSON,
			"debug":            d.Debug,
		},
	}
}

// NewFlagLoader returns command line overrides (priority 1). Only flags the
// user actually set belong in values.
func NewFlagLoader(values map[string]interface{}) *StaticLoader {
	return &StaticLoader{name: "flag", priority: configdomain.PriorityFlag, values: values}
}

func (l *StaticLoader) Name() string { return l.name }

func (l *StaticLoader) Load(ctx context.Context) (configdomain.Snapshot, error) {
	snap := make(configdomain.Snapshot, len(l.values))
	for field, value := range l.values {
		snap[field] = configdomain.Entry{Key: field, Value: value, Source: l.name, SourcePath: l.name, Priority: l.priority}
	}
	return snap, nil
}

var _ configports.Loader = (*StaticLoader)(nil)
