package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"

	"ideadist.dev/cli/internal/core/ports"
)

// walkTarGz calls fn for every header of a gzip-compressed tar archive
func walkTarGz(ctx context.Context, archivePath string, fn func(*tar.Header, io.Reader) error) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}
		if err := fn(header, tarReader); err != nil {
			return err
		}
	}
}

func listTarGz(ctx context.Context, archivePath string) ([]ports.ArchiveEntry, error) {
	var entries []ports.ArchiveEntry
	err := walkTarGz(ctx, archivePath, func(header *tar.Header, _ io.Reader) error {
		entries = append(entries, ports.ArchiveEntry{
			Name:  header.Name,
			Size:  header.Size,
			IsDir: header.Typeflag == tar.TypeDir,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func extractTarGz(ctx context.Context, archivePath, destination string) error {
	return walkTarGz(ctx, archivePath, func(header *tar.Header, r io.Reader) error {
		target, err := safeTarget(destination, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			return writeFile(ctx, target, r, os.FileMode(header.Mode))
		}
		// Links and special files are not part of a distribution's library set.
		return nil
	})
}
