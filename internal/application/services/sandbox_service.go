package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ideadist.dev/cli/internal/application/ports"
	"ideadist.dev/cli/internal/core/domain"
)

// Sandbox subdirectories handed to the IDE
const (
	SandboxConfigDir  = "config"
	SandboxSystemDir  = "system"
	SandboxPluginsDir = "plugins"
)

// TestEnvironment is what a test runner needs to start against a distribution
type TestEnvironment struct {
	SandboxDir       string
	SystemProperties map[string]string
	Classpath        []string
}

// JVMArgs renders the system properties as sorted -D arguments
func (e TestEnvironment) JVMArgs() []string {
	keys := make([]string, 0, len(e.SystemProperties))
	for k := range e.SystemProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, fmt.Sprintf("-D%s=%s", k, e.SystemProperties[k]))
	}
	return args
}

// ClasspathString joins the classpath with the platform list separator
func (e TestEnvironment) ClasspathString() string {
	return strings.Join(e.Classpath, string(os.PathListSeparator))
}

// SandboxService prepares isolated IDE home directories for running tests
type SandboxService struct {
	logger ports.LoggingGateway
}

// NewSandboxService creates a new sandbox service
func NewSandboxService(logger ports.LoggingGateway) *SandboxService {
	return &SandboxService{logger: logger}
}

// Prepare creates the sandbox layout and returns the matching test environment
func (s *SandboxService) Prepare(result *domain.AcquisitionResult, sandboxDir string) (*TestEnvironment, error) {
	if result == nil || !result.Distribution.MarkerPresent {
		return nil, fmt.Errorf("distribution is not extracted")
	}

	dir, err := domain.ExpandHome(sandboxDir)
	if err != nil {
		return nil, err
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return nil, fmt.Errorf("failed to resolve sandbox directory: %w", err)
	}

	for _, sub := range []string{SandboxConfigDir, SandboxSystemDir, SandboxPluginsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create sandbox directory: %w", err)
		}
	}

	classpath, err := Classpath(result, domain.ConfigurationCompile)
	if err != nil {
		return nil, err
	}

	env := &TestEnvironment{
		SandboxDir: dir,
		SystemProperties: map[string]string{
			"idea.home.path":    result.Distribution.Directory,
			"idea.config.path":  filepath.Join(dir, SandboxConfigDir),
			"idea.system.path":  filepath.Join(dir, SandboxSystemDir),
			"idea.plugins.path": filepath.Join(dir, SandboxPluginsDir),
		},
		Classpath: classpath,
	}

	s.logger.LogDebug("Prepared sandbox", map[string]interface{}{"sandbox": dir})
	return env, nil
}
