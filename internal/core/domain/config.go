package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the resolved, immutable configuration of a single acquisition run.
// It is built once from the merged configuration snapshot and passed by value.
type Config struct {
	Version         string
	RepositoryURL   string
	DownloadSources bool
	BundledPlugins  []string
	CacheDir        string
	ConsumerName    string
	ToolsJar        string
	SandboxDir      string
	Timeout         time.Duration
	LogLevel        string
	LogJSON         bool
	Debug           bool
}

// Default configuration values
const (
	DefaultRepositoryURL = "https://www.jetbrains.com/intellij-repository"
	DefaultConsumerName  = "ideadist"
	DefaultTimeout       = 30 * time.Minute
	DefaultLogLevel      = "info"
	DefaultSandboxDir    = "build/idea-sandbox"
)

// DefaultConfig returns a config with default values
func DefaultConfig() Config {
	return Config{
		RepositoryURL:   DefaultRepositoryURL,
		DownloadSources: true,
		CacheDir:        DefaultCacheDir(),
		ConsumerName:    DefaultConsumerName,
		SandboxDir:      DefaultSandboxDir,
		Timeout:         DefaultTimeout,
		LogLevel:        DefaultLogLevel,
	}
}

// DefaultCacheDir returns the per-user directory downloaded distributions are kept in.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "ideadist")
	}
	return filepath.Join(os.TempDir(), "ideadist")
}

// Request builds the distribution request described by this configuration.
func (c Config) Request() (DistributionRequest, error) {
	return NewDistributionRequest(c.Version, c.RepositoryURL, c.DownloadSources, c.BundledPlugins, c.ConsumerName)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
