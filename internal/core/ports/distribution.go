package ports

import (
	"context"

	"ideadist.dev/cli/internal/core/domain"
)

// Resolver resolves module coordinates against a repository to local files
type Resolver interface {
	// Resolve returns every local file the coordinate resolved to
	Resolve(ctx context.Context, coordinate domain.Coordinate, repositoryURL string) ([]string, error)

	// Locate returns where the coordinate is or would be stored locally,
	// without contacting the repository
	Locate(coordinate domain.Coordinate, repositoryURL string) (string, error)
}

// ArchiveEntry describes one entry of an archive
type ArchiveEntry struct {
	Name  string
	Size  int64
	IsDir bool
}

// Archiver reads and extracts distribution archives
type Archiver interface {
	// ListEntries lists the entries of an archive in archive order
	ListEntries(ctx context.Context, archivePath string) ([]ArchiveEntry, error)

	// ExtractAll extracts every entry of the archive below destination
	ExtractAll(ctx context.Context, archivePath, destination string) error
}

// Locker hands out exclusive cross-process locks keyed by file path
type Locker interface {
	// Lock blocks until the lock for path is held or ctx is done
	Lock(ctx context.Context, path string) (Unlocker, error)
}

// Unlocker releases a held lock
type Unlocker interface {
	Unlock() error
}

// DescriptorWriter persists a dependency descriptor document
type DescriptorWriter interface {
	// Write fully replaces the file at path with the encoded descriptor
	Write(ctx context.Context, descriptor *domain.DependencyDescriptor, path string) error

	// Encode renders the descriptor document without writing it
	Encode(descriptor *domain.DependencyDescriptor) ([]byte, error)
}
