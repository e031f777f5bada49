package configinfra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	configdomain "ideadist.dev/cli/internal/core/domain/config"
	configports "ideadist.dev/cli/internal/core/ports/config"
)

// DefaultFileNames are looked up in the working directory, in order
var DefaultFileNames = []string{"ideadist.yaml", "ideadist.yml", "ideadist.toml"}

// FileLoader reads a YAML or TOML config file (priority 3).
// With an explicit path the file must exist; otherwise the first of
// DefaultFileNames found in dir is used, and none is fine.
type FileLoader struct {
	path string
	dir  string
}

func NewFileLoader(path, dir string) *FileLoader {
	return &FileLoader{path: path, dir: dir}
}

func (l *FileLoader) Name() string { return "file" }

// Path returns the file that will be read, or "" when there is none.
func (l *FileLoader) Path() (string, error) {
	if l.path != "" {
		if _, err := os.Stat(l.path); err != nil {
			return "", fmt.Errorf("config file %s: %w", l.path, err)
		}
		return l.path, nil
	}
	for _, name := range DefaultFileNames {
		candidate := filepath.Join(l.dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

func (l *FileLoader) Load(ctx context.Context) (configdomain.Snapshot, error) {
	path, err := l.Path()
	if err != nil || path == "" {
		return configdomain.Snapshot{}, err
	}

	doc, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	violations, err := ValidateDocument(doc)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, fmt.Errorf("invalid config file %s: %s", path, strings.Join(violations, "; "))
	}

	snap := make(configdomain.Snapshot, len(doc))
	for field, value := range doc {
		snap[field] = configdomain.Entry{Key: field, Value: value, Source: "file", SourcePath: path, Priority: configdomain.PriorityFile}
	}
	return snap, nil
}

func decodeFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	doc := make(map[string]interface{})
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return doc, nil
}

var _ configports.Loader = (*FileLoader)(nil)
