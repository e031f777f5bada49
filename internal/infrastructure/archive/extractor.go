package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ideadist.dev/cli/internal/core/ports"
)

// Extractor implements ports.Archiver for zip and gzip-compressed tar archives
type Extractor struct{}

// NewExtractor creates a new archive extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Format is a supported archive format
type Format int

const (
	FormatUnknown Format = iota
	FormatZip
	FormatTarGz
)

// FormatOf determines the archive format from the file name
func FormatOf(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".zip"), strings.HasSuffix(name, ".jar"):
		return FormatZip
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGz
	default:
		return FormatUnknown
	}
}

// ListEntries lists the entries of an archive in archive order
func (e *Extractor) ListEntries(ctx context.Context, archivePath string) ([]ports.ArchiveEntry, error) {
	switch FormatOf(archivePath) {
	case FormatZip:
		return listZip(ctx, archivePath)
	case FormatTarGz:
		return listTarGz(ctx, archivePath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", archivePath)
	}
}

// ExtractAll extracts every entry of the archive below destination
func (e *Extractor) ExtractAll(ctx context.Context, archivePath, destination string) error {
	if err := os.MkdirAll(destination, 0755); err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	switch FormatOf(archivePath) {
	case FormatZip:
		return extractZip(ctx, archivePath, destination)
	case FormatTarGz:
		return extractTarGz(ctx, archivePath, destination)
	default:
		return fmt.Errorf("unsupported archive format: %s", archivePath)
	}
}

// safeTarget joins name onto root and rejects entries escaping root
func safeTarget(root, name string) (string, error) {
	cleanRoot := filepath.Clean(root)
	target := filepath.Join(cleanRoot, filepath.FromSlash(name))
	if target != cleanRoot && !strings.HasPrefix(target, cleanRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", name)
	}
	return target, nil
}

func writeFile(ctx context.Context, target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if mode&0600 != 0600 {
		mode |= 0600
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(file, &ctxReader{ctx: ctx, r: r}); err != nil {
		file.Close()
		return fmt.Errorf("failed to extract file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// ctxReader checks for cancellation before every read
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
	}
	return cr.r.Read(p)
}

var _ ports.Archiver = (*Extractor)(nil)
