package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ideadist.dev/cli/internal/application/ports"
	"ideadist.dev/cli/internal/core/domain"
	coreports "ideadist.dev/cli/internal/core/ports"
)

// MarkerFileName is created inside a cache directory once extraction completed
const MarkerFileName = "markerFile"

// ExtractionCache keeps one extracted directory per archive, next to the archive.
//
// The marker file is the only evidence of a completed extraction: a directory
// without it is discarded and extracted again. The check-extract-mark sequence
// runs under an exclusive lock on "<directory>.lock" so concurrent builds sharing
// a cache do not extract over each other.
type ExtractionCache struct {
	archiver coreports.Archiver
	locker   coreports.Locker
	logger   ports.LoggingGateway
}

// NewExtractionCache creates a new extraction cache. locker may be nil, in which
// case no cross-process locking is done.
func NewExtractionCache(archiver coreports.Archiver, locker coreports.Locker, logger ports.LoggingGateway) *ExtractionCache {
	return &ExtractionCache{archiver: archiver, locker: locker, logger: logger}
}

// DirectoryFor returns the cache directory of an archive: its path without extension.
func DirectoryFor(archivePath string) string {
	return filepath.Join(filepath.Dir(archivePath), domain.TrimArchiveExtension(filepath.Base(archivePath)))
}

// Inspect reports the cache state of an archive without changing anything.
// A marker older than the archive belongs to a previous download and does not count.
func (c *ExtractionCache) Inspect(archivePath string) domain.CachedDistribution {
	dir := DirectoryFor(archivePath)
	return domain.CachedDistribution{
		ArchivePath:   archivePath,
		Directory:     dir,
		MarkerPresent: markerCurrent(filepath.Join(dir, MarkerFileName), archivePath),
	}
}

func markerCurrent(markerPath, archivePath string) bool {
	marker, err := os.Stat(markerPath)
	if err != nil {
		return false
	}
	archive, err := os.Stat(archivePath)
	if err != nil {
		return true
	}
	return !marker.ModTime().Before(archive.ModTime())
}

// EnsureExtracted returns the extracted directory of archivePath, extracting it
// when the marker file is absent.
func (c *ExtractionCache) EnsureExtracted(ctx context.Context, archivePath string) (domain.CachedDistribution, error) {
	cached := c.Inspect(archivePath)
	if cached.MarkerPresent {
		return cached, nil
	}

	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, cached.Directory+".lock")
		if err != nil {
			return cached, &domain.ExtractionError{Archive: archivePath, Directory: cached.Directory, Err: err}
		}
		defer unlock.Unlock()

		// Another process may have finished while we waited.
		if cached = c.Inspect(archivePath); cached.MarkerPresent {
			return cached, nil
		}
	}

	if err := c.extract(ctx, cached); err != nil {
		// Never leave a partial directory behind; it has no marker either way.
		if rmErr := os.RemoveAll(cached.Directory); rmErr != nil {
			c.logger.LogError(rmErr, "Failed to remove incomplete extraction", map[string]interface{}{"directory": cached.Directory})
		}
		return cached, &domain.ExtractionError{Archive: archivePath, Directory: cached.Directory, Err: err}
	}

	cached.MarkerPresent = true
	return cached, nil
}

func (c *ExtractionCache) extract(ctx context.Context, cached domain.CachedDistribution) error {
	if _, err := os.Stat(cached.ArchivePath); err != nil {
		return fmt.Errorf("archive unreadable: %w", err)
	}

	if _, err := os.Stat(cached.Directory); err == nil {
		c.logger.LogWarning("Discarding incomplete extraction", map[string]interface{}{"directory": cached.Directory})
		if err := os.RemoveAll(cached.Directory); err != nil {
			return fmt.Errorf("failed to remove incomplete directory: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(cached.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	c.logger.LogInfo("Extracting distribution", map[string]interface{}{
		"archive":   cached.ArchivePath,
		"directory": cached.Directory,
	})
	if err := c.archiver.ExtractAll(ctx, cached.ArchivePath, cached.Directory); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// The marker must be the last thing written.
	marker, err := os.OpenFile(filepath.Join(cached.Directory, MarkerFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}
	return marker.Close()
}

// Contents lists the entries of archivePath without extracting it
func (c *ExtractionCache) Contents(ctx context.Context, archivePath string) ([]coreports.ArchiveEntry, error) {
	entries, err := c.archiver.ListEntries(ctx, archivePath)
	if err != nil {
		return nil, &domain.ExtractionError{Archive: archivePath, Directory: DirectoryFor(archivePath), Err: err}
	}
	return entries, nil
}

// Purge removes the extracted directory of archivePath. It reports whether
// anything was removed.
func (c *ExtractionCache) Purge(ctx context.Context, archivePath string) (bool, error) {
	dir := DirectoryFor(archivePath)
	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, dir+".lock")
		if err != nil {
			return false, err
		}
		defer unlock.Unlock()
	}
	if !fileExists(dir) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return true, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
