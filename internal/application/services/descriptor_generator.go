package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ideadist.dev/cli/internal/application/ports"
	"ideadist.dev/cli/internal/core/domain"
	coreports "ideadist.dev/cli/internal/core/ports"
)

// LibraryExtension is the extension of library archives collected into descriptors
const LibraryExtension = "jar"

// ToolsLocator returns the path of the platform auxiliary tools archive, or ""
type ToolsLocator func() string

// GenerateInput holds everything a descriptor is generated from
type GenerateInput struct {
	Directory      string
	Module         string
	Version        string
	ConsumerName   string
	BundledPlugins []string
	SourcesPath    string
}

// DescriptorGenerator builds synthetic descriptors for extracted distributions
type DescriptorGenerator struct {
	writer coreports.DescriptorWriter
	tools  ToolsLocator
	logger ports.LoggingGateway
}

// NewDescriptorGenerator creates a new descriptor generator. tools may be nil.
func NewDescriptorGenerator(writer coreports.DescriptorWriter, tools ToolsLocator, logger ports.LoggingGateway) *DescriptorGenerator {
	if tools == nil {
		tools = func() string { return "" }
	}
	return &DescriptorGenerator{writer: writer, tools: tools, logger: logger}
}

// Build scans the distribution and returns its descriptor without writing it.
// Artifacts are ordered by group (libraries, bundled plugins by name, runtime,
// sources) and lexicographically by relative path within a group.
func (g *DescriptorGenerator) Build(in GenerateInput) (*domain.DependencyDescriptor, error) {
	descriptor := domain.NewDependencyDescriptor(domain.DescriptorGroup, in.Module, in.Version)

	libDirs, err := libraryDirs(in.Directory)
	if err != nil {
		return nil, err
	}
	libs, err := scanLibraries(in.Directory, libDirs...)
	if err != nil {
		return nil, err
	}
	descriptor.Artifacts = append(descriptor.Artifacts, libs...)

	plugins := append([]string(nil), in.BundledPlugins...)
	sort.Strings(plugins)
	for _, name := range plugins {
		if err := domain.ValidatePluginName(name); err != nil {
			return nil, err
		}
		pluginLibs, err := scanLibraries(in.Directory, filepath.Join("plugins", name, "lib"))
		if err != nil {
			return nil, err
		}
		if len(pluginLibs) == 0 {
			g.logger.LogDebug("Bundled plugin has no libraries", map[string]interface{}{"plugin": name})
		}
		descriptor.Artifacts = append(descriptor.Artifacts, pluginLibs...)
	}

	if tools := g.tools(); tools != "" && isRegularFile(tools) {
		descriptor.Artifacts = append(descriptor.Artifacts, domain.ArtifactEntry{
			File:          tools,
			Configuration: domain.ConfigurationRuntime,
			BaseDirectory: filepath.Dir(tools),
			Name:          strings.TrimSuffix(filepath.Base(tools), filepath.Ext(tools)),
			Extension:     strings.TrimPrefix(filepath.Ext(tools), "."),
		})
	}

	if in.SourcesPath != "" {
		descriptor.Artifacts = append(descriptor.Artifacts, domain.ArtifactEntry{
			File:          in.SourcesPath,
			Configuration: domain.ConfigurationSources,
			BaseDirectory: filepath.Dir(in.SourcesPath),
			Name:          in.Module,
			Extension:     strings.TrimPrefix(filepath.Ext(in.SourcesPath), "."),
			Classifier:    "sources",
		})
	}

	if err := descriptor.Validate(); err != nil {
		return nil, err
	}
	return descriptor, nil
}

// Generate builds the descriptor and writes it below the distribution directory.
func (g *DescriptorGenerator) Generate(ctx context.Context, in GenerateInput) (*domain.DependencyDescriptor, string, error) {
	path := domain.DescriptorPath(in.Directory, in.Module, in.Version, in.ConsumerName)

	descriptor, err := g.Build(in)
	if err != nil {
		return nil, path, &domain.DescriptorWriteError{Path: path, Err: err}
	}
	if err := g.writer.Write(ctx, descriptor, path); err != nil {
		return nil, path, &domain.DescriptorWriteError{Path: path, Err: err}
	}

	g.logger.LogInfo("Wrote descriptor", map[string]interface{}{
		"path":      path,
		"artifacts": len(descriptor.Artifacts),
	})
	return descriptor, path, nil
}

// LibraryDirPattern matches the top-level directories holding platform libraries
const LibraryDirPattern = "lib*"

// libraryDirs lists the directories directly below root whose name matches
// LibraryDirPattern. root itself is never used as a pattern.
func libraryDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if ok, _ := filepath.Match(LibraryDirPattern, entry.Name()); !ok {
			continue
		}
		if info, err := os.Stat(filepath.Join(root, entry.Name())); err == nil && info.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

// scanLibraries collects the *.jar files directly inside each of dirs
// (relative to root) as compile artifacts. Missing directories yield nothing.
func scanLibraries(root string, dirs ...string) ([]domain.ArtifactEntry, error) {
	var rels []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(filepath.Join(root, dir))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !strings.HasSuffix(entry.Name(), "."+LibraryExtension) {
				continue
			}
			rel := filepath.Join(dir, entry.Name())
			if !isRegularFile(filepath.Join(root, rel)) {
				continue
			}
			rels = append(rels, filepath.ToSlash(rel))
		}
	}
	sort.Strings(rels)

	entries := make([]domain.ArtifactEntry, 0, len(rels))
	for _, rel := range rels {
		entries = append(entries, domain.ArtifactEntry{
			File:          filepath.Join(root, filepath.FromSlash(rel)),
			Configuration: domain.ConfigurationCompile,
			BaseDirectory: root,
			Name:          strings.TrimSuffix(rel, "."+LibraryExtension),
			Extension:     LibraryExtension,
		})
	}
	return entries, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// JDKToolsLocator finds lib/tools.jar of the JDK at javaHome, falling back to
// $JAVA_HOME. An explicit override path wins when set.
func JDKToolsLocator(override, javaHome string) ToolsLocator {
	return func() string {
		if override != "" {
			return override
		}
		home := javaHome
		if home == "" {
			home = os.Getenv("JAVA_HOME")
		}
		if home == "" {
			return ""
		}
		for _, candidate := range []string{
			filepath.Join(home, "lib", "tools.jar"),
			filepath.Join(home, "..", "lib", "tools.jar"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				return filepath.Clean(candidate)
			} else if !errors.Is(err, os.ErrNotExist) {
				return ""
			}
		}
		return ""
	}
}
