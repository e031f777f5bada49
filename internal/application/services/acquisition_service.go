package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"ideadist.dev/cli/internal/application/ports"
	"ideadist.dev/cli/internal/core/domain"
	coreports "ideadist.dev/cli/internal/core/ports"
)

// AcquisitionService runs fetch, extraction and descriptor generation in order
type AcquisitionService struct {
	fetcher   *Fetcher
	cache     *ExtractionCache
	generator *DescriptorGenerator
	logger    ports.LoggingGateway
	timeout   time.Duration
}

// NewAcquisitionService creates a new acquisition service. A zero timeout
// leaves the caller's context as the only bound.
func NewAcquisitionService(fetcher *Fetcher, cache *ExtractionCache, generator *DescriptorGenerator, logger ports.LoggingGateway, timeout time.Duration) *AcquisitionService {
	return &AcquisitionService{
		fetcher:   fetcher,
		cache:     cache,
		generator: generator,
		logger:    logger,
		timeout:   timeout,
	}
}

// Fetch resolves the distribution archive only
func (s *AcquisitionService) Fetch(ctx context.Context, req domain.DistributionRequest) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.fetcher.Fetch(ctx, req)
}

// Extract ensures an already downloaded archive is extracted
func (s *AcquisitionService) Extract(ctx context.Context, archivePath string) (domain.CachedDistribution, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.cache.EnsureExtracted(ctx, archivePath)
}

// List returns the entries of an archive without extracting it
func (s *AcquisitionService) List(ctx context.Context, archivePath string) ([]coreports.ArchiveEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.cache.Contents(ctx, archivePath)
}

// Acquire fetches, extracts and describes the requested distribution
func (s *AcquisitionService) Acquire(ctx context.Context, req domain.DistributionRequest) (*domain.AcquisitionResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	result := &domain.AcquisitionResult{Request: req, Coordinate: req.Coordinate()}

	archivePath, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	result.Distribution, err = s.cache.EnsureExtracted(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	result.SourcesPath = s.fetcher.FetchSources(ctx, req)

	result.Descriptor, result.DescriptorPath, err = s.generator.Generate(ctx, GenerateInput{
		Directory:      result.Distribution.Directory,
		Module:         result.Coordinate.Module,
		Version:        result.Coordinate.Version,
		ConsumerName:   req.ConsumerName,
		BundledPlugins: req.BundledPlugins,
		SourcesPath:    result.SourcesPath,
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogInfo("Distribution ready", map[string]interface{}{
		"coordinate": result.Coordinate.String(),
		"directory":  result.Distribution.Directory,
		"duration":   time.Since(started).Round(time.Millisecond).String(),
	})
	return result, nil
}

// Clean removes the extracted directory of the requested distribution. The
// archive itself is kept and nothing is downloaded.
func (s *AcquisitionService) Clean(ctx context.Context, req domain.DistributionRequest) (bool, error) {
	archivePath, err := s.fetcher.Locate(req)
	if err != nil {
		return false, err
	}
	removed, err := s.cache.Purge(ctx, archivePath)
	if err == nil && removed {
		s.logger.LogInfo("Removed extracted distribution", map[string]interface{}{"directory": DirectoryFor(archivePath)})
	}
	return removed, err
}

func (s *AcquisitionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Classpath returns the files of the given configuration of an acquisition
func Classpath(result *domain.AcquisitionResult, conf domain.Configuration) ([]string, error) {
	if result == nil || result.Descriptor == nil {
		return nil, fmt.Errorf("no descriptor available")
	}
	if !result.Descriptor.HasConfiguration(conf) {
		return nil, fmt.Errorf("unknown configuration %q", conf)
	}
	return result.Descriptor.Files(conf), nil
}

// RepositoryPatterns returns the Ivy artifact patterns a resolver needs to
// locate every artifact of the descriptor, one per base directory, sorted.
func RepositoryPatterns(descriptor *domain.DependencyDescriptor) []string {
	seen := make(map[string]bool)
	var patterns []string
	for _, a := range descriptor.Artifacts {
		pattern := filepath.ToSlash(a.BaseDirectory) + "/[artifact].[ext]"
		if a.Classifier != "" {
			pattern = filepath.ToSlash(a.BaseDirectory) + "/[artifact]-[revision]-[classifier].[ext]"
		}
		if !seen[pattern] {
			seen[pattern] = true
			patterns = append(patterns, pattern)
		}
	}
	sort.Strings(patterns)
	return patterns
}
