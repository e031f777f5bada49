package services

import (
	"context"

	"ideadist.dev/cli/internal/application/ports"
	"ideadist.dev/cli/internal/core/domain"
	coreports "ideadist.dev/cli/internal/core/ports"
)

// Fetcher resolves distribution archives from a release-channel repository
type Fetcher struct {
	resolver coreports.Resolver
	logger   ports.LoggingGateway
}

// NewFetcher creates a new distribution fetcher
func NewFetcher(resolver coreports.Resolver, logger ports.LoggingGateway) *Fetcher {
	return &Fetcher{resolver: resolver, logger: logger}
}

// Fetch resolves the distribution archive of req and returns its local path.
// Anything but exactly one resolved file is a *domain.ResolutionError.
func (f *Fetcher) Fetch(ctx context.Context, req domain.DistributionRequest) (string, error) {
	coordinate := req.Coordinate()
	repository := req.ChannelURL()

	f.logger.LogInfo("Resolving distribution", map[string]interface{}{
		"coordinate": coordinate.String(),
		"repository": repository,
	})

	return f.resolveOne(ctx, coordinate, repository)
}

// FetchSources resolves the sources archive matching req. Sources are optional:
// an empty path is returned when they are not requested or cannot be resolved.
func (f *Fetcher) FetchSources(ctx context.Context, req domain.DistributionRequest) string {
	if !req.DownloadSources {
		return ""
	}
	coordinate := req.Coordinate().SourcesCoordinate()
	path, err := f.resolveOne(ctx, coordinate, req.ChannelURL())
	if err != nil {
		f.logger.LogWarning("Sources archive unavailable", map[string]interface{}{
			"coordinate": coordinate.String(),
			"error":      err.Error(),
		})
		return ""
	}
	return path
}

// Locate returns where the distribution archive of req is kept locally. It
// never downloads.
func (f *Fetcher) Locate(req domain.DistributionRequest) (string, error) {
	return f.resolver.Locate(req.Coordinate(), req.ChannelURL())
}

func (f *Fetcher) resolveOne(ctx context.Context, coordinate domain.Coordinate, repository string) (string, error) {
	files, err := f.resolver.Resolve(ctx, coordinate, repository)
	if err != nil {
		return "", &domain.ResolutionError{Coordinate: coordinate, Repository: repository, Err: err}
	}
	switch len(files) {
	case 0:
		return "", &domain.ResolutionError{Coordinate: coordinate, Repository: repository, Err: domain.ErrNoArtifacts()}
	case 1:
		f.logger.LogDebug("Resolved artifact", map[string]interface{}{"coordinate": coordinate.String(), "file": files[0]})
		return files[0], nil
	default:
		return "", &domain.ResolutionError{Coordinate: coordinate, Repository: repository, Err: domain.ErrAmbiguousArtifacts(files)}
	}
}
