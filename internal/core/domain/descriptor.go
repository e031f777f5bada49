package domain

import (
	"fmt"
	"path/filepath"
)

// Configuration is a named grouping of artifacts in a dependency descriptor.
type Configuration string

const (
	ConfigurationCompile Configuration = "compile"
	ConfigurationSources Configuration = "sources"
	ConfigurationRuntime Configuration = "runtime"
)

// DescriptorGroup is the organisation synthetic descriptors are published under.
const DescriptorGroup = "com.jetbrains"

// ArtifactEntry is one library file discovered for a descriptor.
// Name is the artifact path relative to BaseDirectory without its extension.
type ArtifactEntry struct {
	File          string
	Configuration Configuration
	BaseDirectory string
	Name          string
	Extension     string
	Classifier    string
}

// DependencyDescriptor is a synthetic module description for an unpacked distribution.
type DependencyDescriptor struct {
	Group          string
	Module         string
	Version        string
	Configurations []Configuration
	Artifacts      []ArtifactEntry
}

// NewDependencyDescriptor returns a descriptor declaring the compile, sources
// and runtime configurations.
func NewDependencyDescriptor(group, module, version string) *DependencyDescriptor {
	return &DependencyDescriptor{
		Group:          group,
		Module:         module,
		Version:        version,
		Configurations: []Configuration{ConfigurationCompile, ConfigurationSources, ConfigurationRuntime},
	}
}

// HasConfiguration reports whether conf is declared.
func (d *DependencyDescriptor) HasConfiguration(conf Configuration) bool {
	for _, c := range d.Configurations {
		if c == conf {
			return true
		}
	}
	return false
}

// Validate checks that every artifact belongs to a declared configuration.
func (d *DependencyDescriptor) Validate() error {
	if d.Module == "" || d.Version == "" {
		return fmt.Errorf("descriptor module and version are required")
	}
	for _, a := range d.Artifacts {
		if !d.HasConfiguration(a.Configuration) {
			return fmt.Errorf("artifact %s uses undeclared configuration %q", a.Name, a.Configuration)
		}
	}
	return nil
}

// Artifacts in the given configuration, in descriptor order.
func (d *DependencyDescriptor) ArtifactsIn(conf Configuration) []ArtifactEntry {
	var out []ArtifactEntry
	for _, a := range d.Artifacts {
		if a.Configuration == conf {
			out = append(out, a)
		}
	}
	return out
}

// Files returns the absolute files of every artifact in conf.
func (d *DependencyDescriptor) Files(conf Configuration) []string {
	var files []string
	for _, a := range d.ArtifactsIn(conf) {
		files = append(files, a.File)
	}
	return files
}

// DescriptorPath is where the descriptor for a consumer is written inside dir.
func DescriptorPath(dir, module, version, consumer string) string {
	return filepath.Join(dir, DescriptorGroup, module, version, "ivy-"+consumer+".xml")
}

// AcquisitionResult carries every output path of a completed acquisition.
type AcquisitionResult struct {
	Request        DistributionRequest
	Coordinate     Coordinate
	Distribution   CachedDistribution
	SourcesPath    string
	Descriptor     *DependencyDescriptor
	DescriptorPath string
}
