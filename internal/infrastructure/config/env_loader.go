package configinfra

import (
	"context"
	"os"

	configdomain "ideadist.dev/cli/internal/core/domain/config"
	configports "ideadist.dev/cli/internal/core/ports/config"
)

// EnvPrefix prefixes every environment variable the loader reads
const EnvPrefix = "IDEADIST_"

// envFields maps IDEADIST_* variables to config fields
var envFields = map[string]string{
	"VERSION":          "version",
	"REPOSITORY_URL":   "repository_url",
	"DOWNLOAD_SOURCES": "download_sources",
	"BUNDLED_PLUGINS":  "bundled_plugins",
	"CACHE_DIR":        "cache_dir",
	"CONSUMER_NAME":    "consumer_name",
	"TOOLS_JAR":        "tools_jar",
	"SANDBOX_DIR":      "sandbox_dir",
	"TIMEOUT":          "timeout",
	"LOG_LEVEL":        "log_level",
	"LOG_JSON":         "log_json",
	"DEBUG":            "debug",
}

type EnvLoader struct {
	lookup func(string) (string, bool)
}

func NewEnvLoader() *EnvLoader { return &EnvLoader{lookup: os.LookupEnv} }

// NewEnvLoaderFrom reads variables from a fixed map instead of the process environment.
func NewEnvLoaderFrom(env map[string]string) *EnvLoader {
	return &EnvLoader{lookup: func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}}
}

func (l *EnvLoader) Name() string { return "env" }

// Load builds a snapshot from IDEADIST_* variables. Values stay strings; the
// snapshot accessors convert them, so a malformed value is reported at resolve
// time together with the variable it came from.
func (l *EnvLoader) Load(ctx context.Context) (configdomain.Snapshot, error) {
	snap := make(configdomain.Snapshot)
	for suffix, field := range envFields {
		key := EnvPrefix + suffix
		if v, ok := l.lookup(key); ok && v != "" {
			snap[field] = configdomain.Entry{Key: field, Value: v, Source: "env", SourcePath: key, Priority: configdomain.PriorityEnv}
		}
	}
	return snap, nil
}

var _ configports.Loader = (*EnvLoader)(nil)
