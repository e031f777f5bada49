package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"os"

	"ideadist.dev/cli/internal/core/ports"
)

func listZip(ctx context.Context, archivePath string) ([]ports.ArchiveEntry, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer reader.Close()

	entries := make([]ports.ArchiveEntry, 0, len(reader.File))
	for _, f := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries = append(entries, ports.ArchiveEntry{
			Name:  f.Name,
			Size:  int64(f.UncompressedSize64),
			IsDir: f.FileInfo().IsDir(),
		})
	}
	return entries, nil
}

func extractZip(ctx context.Context, archivePath, destination string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer reader.Close()

	for _, f := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := safeTarget(destination, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		err = writeFile(ctx, target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
