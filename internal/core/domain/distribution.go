package domain

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
)

// ErrInvalidRequest is returned when a distribution request cannot be built.
var ErrInvalidRequest = errors.New("invalid distribution request")

// ReleaseChannel is the repository sub-path a distribution is published under.
type ReleaseChannel string

const (
	ChannelReleases  ReleaseChannel = "releases"
	ChannelSnapshots ReleaseChannel = "snapshots"
)

// PreReleaseToken marks a version as published to the snapshots channel.
const PreReleaseToken = "SNAPSHOT"

// ChannelFor selects the release channel for a version string.
func ChannelFor(version string) ReleaseChannel {
	if strings.Contains(strings.ToUpper(version), PreReleaseToken) {
		return ChannelSnapshots
	}
	return ChannelReleases
}

// Product types that can prefix a version, as in "IU-2023.1".
const (
	ProductCommunity Product = "IC"
	ProductUltimate  Product = "IU"
)

// Product identifies a distribution flavour.
type Product string

// DistributionGroup is the group every distribution module is published under.
const DistributionGroup = "com.jetbrains.intellij.idea"

// DistributionRequest describes which distribution to acquire and from where.
// It is created once from configuration and never mutated afterwards.
type DistributionRequest struct {
	Version         string
	RepositoryURL   string
	DownloadSources bool
	BundledPlugins  []string
	ConsumerName    string
}

// NewDistributionRequest validates its inputs and returns an immutable request.
// Bundled plugin names are de-duplicated and sorted.
func NewDistributionRequest(version, repositoryURL string, downloadSources bool, bundledPlugins []string, consumerName string) (DistributionRequest, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return DistributionRequest{}, fmt.Errorf("%w: version cannot be empty", ErrInvalidRequest)
	}
	if err := validateRepositoryURL(repositoryURL); err != nil {
		return DistributionRequest{}, err
	}
	if consumerName == "" {
		consumerName = DefaultConsumerName
	}

	seen := make(map[string]bool)
	plugins := make([]string, 0, len(bundledPlugins))
	for _, name := range bundledPlugins {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		if err := ValidatePluginName(name); err != nil {
			return DistributionRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		seen[name] = true
		plugins = append(plugins, name)
	}
	sort.Strings(plugins)

	return DistributionRequest{
		Version:         version,
		RepositoryURL:   strings.TrimRight(repositoryURL, "/"),
		DownloadSources: downloadSources,
		BundledPlugins:  plugins,
		ConsumerName:    consumerName,
	}, nil
}

// ValidatePluginName reports an error unless name is a single directory name
// below plugins/, so requested plugins never reach outside their own directory.
func ValidatePluginName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || path.Clean(name) != name {
		return fmt.Errorf("invalid bundled plugin name %q", name)
	}
	return nil
}

func validateRepositoryURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: repository URL cannot be empty", ErrInvalidRequest)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid repository URL %q: %v", ErrInvalidRequest, raw, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: repository URL must include host: %s", ErrInvalidRequest, raw)
		}
	case "file":
	default:
		return fmt.Errorf("%w: unsupported repository URL scheme %q", ErrInvalidRequest, u.Scheme)
	}
	return nil
}

// Channel returns the release channel of the requested version.
func (r DistributionRequest) Channel() ReleaseChannel {
	return ChannelFor(r.Version)
}

// ChannelURL joins the base repository URL with the release channel label.
func (r DistributionRequest) ChannelURL() string {
	return r.RepositoryURL + "/" + string(r.Channel())
}

// Coordinate returns the module coordinate of the distribution archive.
func (r DistributionRequest) Coordinate() Coordinate {
	return DistributionCoordinate(r.Version)
}

// Coordinate identifies a published artifact.
type Coordinate struct {
	Group      string
	Module     string
	Version    string
	Classifier string
	Extension  string
}

// DistributionCoordinate maps a version such as "IC-2023.1" or "2023.1" to the
// archive coordinate. Versions without a product prefix default to IC.
func DistributionCoordinate(version string) Coordinate {
	product := ProductCommunity
	for _, p := range []Product{ProductCommunity, ProductUltimate} {
		if strings.HasPrefix(version, string(p)+"-") {
			product = p
			version = strings.TrimPrefix(version, string(p)+"-")
			break
		}
	}
	return Coordinate{
		Group:     DistributionGroup,
		Module:    "idea" + string(product),
		Version:   version,
		Extension: "zip",
	}
}

// SourcesCoordinate returns the coordinate of the matching sources archive.
func (c Coordinate) SourcesCoordinate() Coordinate {
	return Coordinate{
		Group:      c.Group,
		Module:     c.Module,
		Version:    c.Version,
		Classifier: "sources",
		Extension:  "jar",
	}
}

// FileName returns the conventional file name, e.g. ideaIC-2023.1-sources.jar.
func (c Coordinate) FileName() string {
	name := c.Module + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + c.Extension
}

// MavenPath returns the repository-relative path in the Maven layout.
func (c Coordinate) MavenPath() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Module, c.Version, c.FileName())
}

func (c Coordinate) String() string {
	s := c.Group + ":" + c.Module + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "" {
		s += "@" + c.Extension
	}
	return s
}

// TrimArchiveExtension strips a known archive extension from a file name
func TrimArchiveExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".tar.gz", ".tgz", ".zip", ".jar"} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

// CachedDistribution is an archive together with its extraction directory.
// MarkerPresent is true only when Directory fully reflects ArchivePath.
type CachedDistribution struct {
	ArchivePath   string
	Directory     string
	MarkerPresent bool
}
