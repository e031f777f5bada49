package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"ideadist.dev/cli/internal/core/domain"
	"ideadist.dev/cli/internal/core/ports"
)

// DefaultSnapshotTTL is how long a cached snapshot archive is used before it is
// downloaded again
const DefaultSnapshotTTL = 24 * time.Hour

// Options configures the HTTP resolver
type Options struct {
	// CacheDir is where resolved artifacts are stored, in a group/module/version layout.
	CacheDir string
	// Progress receives a byte progress bar while downloading. nil disables it.
	Progress io.Writer
	// Timeout bounds a single download. Zero means no timeout beyond the context.
	Timeout   time.Duration
	UserAgent string
	// SnapshotTTL bounds the age of cached snapshot artifacts. Zero means
	// DefaultSnapshotTTL. Release artifacts never expire.
	SnapshotTTL time.Duration
}

// HTTPResolver resolves Maven-layout coordinates from an http(s) or file repository
type HTTPResolver struct {
	httpClient  *http.Client
	cacheDir    string
	progress    io.Writer
	userAgent   string
	snapshotTTL time.Duration
}

// NewHTTPResolver creates a new resolver
func NewHTTPResolver(opts Options) (*HTTPResolver, error) {
	if strings.TrimSpace(opts.CacheDir) == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	cacheDir, err := domain.ExpandHome(opts.CacheDir)
	if err != nil {
		return nil, err
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "ideadist/1.0"
	}
	snapshotTTL := opts.SnapshotTTL
	if snapshotTTL <= 0 {
		snapshotTTL = DefaultSnapshotTTL
	}
	return &HTTPResolver{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		cacheDir:    cacheDir,
		progress:    opts.Progress,
		userAgent:   userAgent,
		snapshotTTL: snapshotTTL,
	}, nil
}

// CachePath is where a coordinate is stored locally
func (r *HTTPResolver) CachePath(coordinate domain.Coordinate) string {
	return filepath.Join(r.cacheDir, coordinate.Group, coordinate.Module, coordinate.Version, coordinate.FileName())
}

// Locate returns the local path of coordinate: inside the repository for file
// repositories, inside the cache otherwise.
func (r *HTTPResolver) Locate(coordinate domain.Coordinate, repositoryURL string) (string, error) {
	path, _, err := r.locate(coordinate, repositoryURL)
	return path, err
}

func (r *HTTPResolver) locate(coordinate domain.Coordinate, repositoryURL string) (string, *url.URL, error) {
	base, err := url.Parse(strings.TrimRight(repositoryURL, "/"))
	if err != nil {
		return "", nil, fmt.Errorf("invalid repository URL: %w", err)
	}
	if base.Scheme == "file" {
		return filepath.Join(filepath.FromSlash(base.Path), filepath.FromSlash(coordinate.MavenPath())), base, nil
	}
	return r.CachePath(coordinate), base, nil
}

// Resolve returns the local file for coordinate, downloading it when not cached.
// A coordinate the repository does not have resolves to no files.
func (r *HTTPResolver) Resolve(ctx context.Context, coordinate domain.Coordinate, repositoryURL string) ([]string, error) {
	local, base, err := r.locate(coordinate, repositoryURL)
	if err != nil {
		return nil, err
	}

	if base.Scheme == "file" {
		if _, err := os.Stat(local); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
		return []string{local}, nil
	}

	if r.isFresh(coordinate, local) {
		return []string{local}, nil
	}

	found, err := r.download(ctx, base.String()+"/"+coordinate.MavenPath(), local, coordinate.FileName())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return []string{local}, nil
}

// isFresh reports whether the cached copy of coordinate can be used without
// asking the repository. Snapshot artifacts expire after the snapshot TTL.
func (r *HTTPResolver) isFresh(coordinate domain.Coordinate, local string) bool {
	info, err := os.Stat(local)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return false
	}
	if domain.ChannelFor(coordinate.Version) == domain.ChannelSnapshots {
		return time.Since(info.ModTime()) < r.snapshotTTL
	}
	return true
}

// download fetches rawURL into dest. It reports false when the repository answered 404.
func (r *HTTPResolver) download(ctx context.Context, rawURL, dest, description string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("download of %s failed with status %d", rawURL, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return false, fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	var w io.Writer = tmp
	var bar *progressbar.ProgressBar
	if r.progress != nil {
		bar = progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(r.progress),
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		w = io.MultiWriter(tmp, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("download of %s interrupted: %w", rawURL, err)
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("failed to close download: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("failed to store download: %w", err)
	}
	return true, nil
}

var _ ports.Resolver = (*HTTPResolver)(nil)
