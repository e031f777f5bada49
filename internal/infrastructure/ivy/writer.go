package ivy

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"ideadist.dev/cli/internal/core/domain"
	"ideadist.dev/cli/internal/core/ports"
)

// MavenNamespace qualifies the classifier attribute of Ivy artifacts
const MavenNamespace = "http://ant.apache.org/ivy/maven"

type ivyModule struct {
	XMLName        xml.Name     `xml:"ivy-module"`
	Version        string       `xml:"version,attr"`
	MavenNS        string       `xml:"xmlns:m,attr"`
	Info           info         `xml:"info"`
	Configurations []conf       `xml:"configurations>conf"`
	Publications   []publishing `xml:"publications>artifact"`
}

type info struct {
	Organisation string `xml:"organisation,attr"`
	Module       string `xml:"module,attr"`
	Revision     string `xml:"revision,attr"`
}

type conf struct {
	Name       string `xml:"name,attr"`
	Visibility string `xml:"visibility,attr"`
}

type publishing struct {
	Name       string `xml:"name,attr"`
	Type       string `xml:"type,attr"`
	Ext        string `xml:"ext,attr"`
	Conf       string `xml:"conf,attr"`
	Classifier string `xml:"m:classifier,attr,omitempty"`
}

// Writer renders dependency descriptors as Ivy module files
type Writer struct {
	perm os.FileMode
}

// NewWriter creates a new Ivy descriptor writer
func NewWriter() *Writer {
	return &Writer{perm: 0644}
}

// Encode renders the descriptor. Output depends only on the descriptor contents.
func (w *Writer) Encode(descriptor *domain.DependencyDescriptor) ([]byte, error) {
	if err := descriptor.Validate(); err != nil {
		return nil, err
	}

	doc := ivyModule{
		Version: "2.0",
		MavenNS: MavenNamespace,
		Info: info{
			Organisation: descriptor.Group,
			Module:       descriptor.Module,
			Revision:     descriptor.Version,
		},
	}
	for _, c := range descriptor.Configurations {
		doc.Configurations = append(doc.Configurations, conf{Name: string(c), Visibility: "public"})
	}
	for _, a := range descriptor.Artifacts {
		doc.Publications = append(doc.Publications, publishing{
			Name:       a.Name,
			Type:       a.Extension,
			Ext:        a.Extension,
			Conf:       string(a.Configuration),
			Classifier: a.Classifier,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode descriptor: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Write encodes the descriptor and atomically replaces the file at path
func (w *Writer) Write(ctx context.Context, descriptor *domain.DependencyDescriptor, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := w.Encode(descriptor)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create descriptor directory: %w", err)
	}
	return writeAtomic(dir, path, data, w.perm)
}

// writeAtomic writes to a temporary file in dir and renames it over dest
func writeAtomic(dir, dest string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(dir, ".tmp-ivy-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, perm)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

var _ ports.DescriptorWriter = (*Writer)(nil)
