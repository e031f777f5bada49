package testfixtures

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// DistributionBuilder provides a builder pattern for creating test distribution archives
type DistributionBuilder struct {
	files map[string][]byte
	dirs  []string
}

// NewDistributionBuilder creates a builder with a minimal IDE layout
func NewDistributionBuilder() *DistributionBuilder {
	return &DistributionBuilder{files: map[string][]byte{
		"build.txt":       []byte("IC-231.8109.175"),
		"lib/openapi.jar": []byte("openapi"),
		"lib/util.jar":    []byte("util"),
	}}
}

// NewEmptyDistributionBuilder creates a builder without any entries
func NewEmptyDistributionBuilder() *DistributionBuilder {
	return &DistributionBuilder{files: map[string][]byte{}}
}

// WithFile adds a file entry; name uses forward slashes
func (b *DistributionBuilder) WithFile(name, content string) *DistributionBuilder {
	b.files[name] = []byte(content)
	return b
}

// WithDir adds an explicit directory entry
func (b *DistributionBuilder) WithDir(name string) *DistributionBuilder {
	b.dirs = append(b.dirs, name)
	return b
}

// WithBundledPlugin adds plugins/<name>/lib/<jar> entries
func (b *DistributionBuilder) WithBundledPlugin(name string, jars ...string) *DistributionBuilder {
	for _, jar := range jars {
		b.files["plugins/"+name+"/lib/"+jar] = []byte(name + "/" + jar)
	}
	return b
}

// Names returns the file entry names in sorted order
func (b *DistributionBuilder) Names() []string {
	names := make([]string, 0, len(b.files))
	for name := range b.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ZipBytes renders the archive as zip
func (b *DistributionBuilder) ZipBytes(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, dir := range b.dirs {
		if _, err := zw.Create(dir + "/"); err != nil {
			t.Fatalf("failed to add dir %s: %v", dir, err)
		}
	}
	for _, name := range b.Names() {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := w.Write(b.files[name]); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// TarGzBytes renders the archive as gzip-compressed tar
func (b *DistributionBuilder) TarGzBytes(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, dir := range b.dirs {
		if err := tw.WriteHeader(&tar.Header{Name: dir + "/", Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
			t.Fatalf("failed to add dir %s: %v", dir, err)
		}
	}
	for _, name := range b.Names() {
		content := b.files[name]
		hdr := &tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := tw.Write(content); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip: %v", err)
	}
	return buf.Bytes()
}

// WriteZip writes the zip archive to dir/name and returns its path
func (b *DistributionBuilder) WriteZip(t testing.TB, dir, name string) string {
	t.Helper()
	return writeBytes(t, filepath.Join(dir, name), b.ZipBytes(t))
}

// WriteTarGz writes the tar.gz archive to dir/name and returns its path
func (b *DistributionBuilder) WriteTarGz(t testing.TB, dir, name string) string {
	t.Helper()
	return writeBytes(t, filepath.Join(dir, name), b.TarGzBytes(t))
}

// WriteTree lays the entries out as plain files below dir
func (b *DistributionBuilder) WriteTree(t testing.TB, dir string) {
	t.Helper()
	for _, d := range b.dirs {
		if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(d)), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}
	for name, content := range b.files {
		writeBytes(t, filepath.Join(dir, filepath.FromSlash(name)), content)
	}
}

func writeBytes(t testing.TB, path string, content []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
