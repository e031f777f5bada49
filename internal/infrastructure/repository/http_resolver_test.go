package repository

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideadist.dev/cli/internal/core/domain"
)

const (
	archivePath  = "/releases/com/jetbrains/intellij/idea/ideaIC/2023.1/ideaIC-2023.1.zip"
	snapshotPath = "/snapshots/com/jetbrains/intellij/idea/ideaIC/LATEST-EAP-SNAPSHOT/ideaIC-LATEST-EAP-SNAPSHOT.zip"
)

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case archivePath:
			w.Header().Set("Content-Type", "application/zip")
			w.Write([]byte("zip-bytes"))
		case snapshotPath:
			w.Write([]byte(fmt.Sprintf("snapshot-%d", atomic.LoadInt32(hits))))
		case "/broken/com/jetbrains/intellij/idea/ideaIC/2023.1/ideaIC-2023.1.zip":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPResolver_DownloadsIntoCache(t *testing.T) {
	var hits int32
	server := newServer(t, &hits)
	cacheDir := t.TempDir()
	var progress bytes.Buffer

	resolver, err := NewHTTPResolver(Options{CacheDir: cacheDir, Progress: &progress, Timeout: 5 * time.Second})
	require.NoError(t, err)

	coord := domain.DistributionCoordinate("IC-2023.1")
	files, err := resolver.Resolve(context.Background(), coord, server.URL+"/releases")
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, filepath.Join(cacheDir, "com.jetbrains.intellij.idea", "ideaIC", "2023.1", "ideaIC-2023.1.zip"), files[0])
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(content))

	// Cached artifacts are not downloaded again.
	again, err := resolver.Resolve(context.Background(), coord, server.URL+"/releases/")
	require.NoError(t, err)
	assert.Equal(t, files, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPResolver_SnapshotsExpire(t *testing.T) {
	var hits int32
	server := newServer(t, &hits)

	resolver, err := NewHTTPResolver(Options{CacheDir: t.TempDir(), SnapshotTTL: time.Hour})
	require.NoError(t, err)

	coord := domain.DistributionCoordinate("IC-LATEST-EAP-SNAPSHOT")
	files, err := resolver.Resolve(context.Background(), coord, server.URL+"/snapshots")
	require.NoError(t, err)
	require.Len(t, files, 1)

	// Within the TTL the cached snapshot is used.
	_, err = resolver.Resolve(context.Background(), coord, server.URL+"/snapshots")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(files[0], old, old))

	again, err := resolver.Resolve(context.Background(), coord, server.URL+"/snapshots")
	require.NoError(t, err)
	assert.Equal(t, files, again)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	content, err := os.ReadFile(again[0])
	require.NoError(t, err)
	assert.Equal(t, "snapshot-2", string(content))
}

func TestHTTPResolver_ReleasesNeverExpire(t *testing.T) {
	var hits int32
	server := newServer(t, &hits)

	resolver, err := NewHTTPResolver(Options{CacheDir: t.TempDir(), SnapshotTTL: time.Minute})
	require.NoError(t, err)

	coord := domain.DistributionCoordinate("IC-2023.1")
	files, err := resolver.Resolve(context.Background(), coord, server.URL+"/releases")
	require.NoError(t, err)
	require.Len(t, files, 1)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(files[0], old, old))

	_, err = resolver.Resolve(context.Background(), coord, server.URL+"/releases")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPResolver_NotFoundResolvesToNothing(t *testing.T) {
	var hits int32
	server := newServer(t, &hits)

	resolver, err := NewHTTPResolver(Options{CacheDir: t.TempDir()})
	require.NoError(t, err)

	files, err := resolver.Resolve(context.Background(), domain.DistributionCoordinate("IC-2099.1"), server.URL+"/releases")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestHTTPResolver_ServerError(t *testing.T) {
	var hits int32
	server := newServer(t, &hits)
	cacheDir := t.TempDir()

	resolver, err := NewHTTPResolver(Options{CacheDir: cacheDir})
	require.NoError(t, err)

	coord := domain.DistributionCoordinate("IC-2023.1")
	_, err = resolver.Resolve(context.Background(), coord, server.URL+"/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.NoFileExists(t, resolver.CachePath(coord))
}

func TestHTTPResolver_UnreachableRepository(t *testing.T) {
	resolver, err := NewHTTPResolver(Options{CacheDir: t.TempDir(), Timeout: time.Second})
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), domain.DistributionCoordinate("IC-2023.1"), "http://127.0.0.1:1/releases")
	assert.ErrorContains(t, err, "download failed")
}

func TestHTTPResolver_FileRepository(t *testing.T) {
	repo := t.TempDir()
	coord := domain.DistributionCoordinate("IC-2023.1").SourcesCoordinate()
	local := filepath.Join(repo, "releases", filepath.FromSlash(coord.MavenPath()))
	require.NoError(t, os.MkdirAll(filepath.Dir(local), 0755))
	require.NoError(t, os.WriteFile(local, []byte("src"), 0644))

	resolver, err := NewHTTPResolver(Options{CacheDir: t.TempDir()})
	require.NoError(t, err)

	files, err := resolver.Resolve(context.Background(), coord, "file://"+filepath.ToSlash(repo)+"/releases")
	require.NoError(t, err)
	assert.Equal(t, []string{local}, files)

	missing, err := resolver.Resolve(context.Background(), domain.DistributionCoordinate("IC-1.0"), "file://"+filepath.ToSlash(repo)+"/releases")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestHTTPResolver_Locate(t *testing.T) {
	cache := t.TempDir()
	resolver, err := NewHTTPResolver(Options{CacheDir: cache})
	require.NoError(t, err)
	coord := domain.DistributionCoordinate("IC-2023.1")

	path, err := resolver.Locate(coord, "https://example.com/repo/releases")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "com.jetbrains.intellij.idea", "ideaIC", "2023.1", "ideaIC-2023.1.zip"), path)
	assert.NoFileExists(t, path)

	path, err = resolver.Locate(coord, "file:///srv/repo/releases")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/srv/repo/releases/com/jetbrains/intellij/idea/ideaIC/2023.1/ideaIC-2023.1.zip"), path)
}

func TestNewHTTPResolver_RequiresCacheDir(t *testing.T) {
	_, err := NewHTTPResolver(Options{})
	assert.ErrorContains(t, err, "cache directory is required")
}
