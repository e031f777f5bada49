package di

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideadist.dev/cli/internal/core/testfixtures"
	configinfra "ideadist.dev/cli/internal/infrastructure/config"
	"ideadist.dev/cli/internal/interfaces/cli"
)

func newRepositoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	archive := testfixtures.NewDistributionBuilder().
		WithBundledPlugin("git4idea", "git4idea.jar").
		ZipBytes(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/releases/com/jetbrains/intellij/idea/ideaIC/2023.1/ideaIC-2023.1.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// run executes the CLI with a fresh container and returns stdout
func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	var stderr bytes.Buffer
	container := NewContainer(Options{Stderr: &stderr, DisableProgress: true, Env: env})

	var stdout bytes.Buffer
	root := cli.NewRootCommand(container.GetCLIContainer())
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestContainer_LoggerReadableDuringConfigure(t *testing.T) {
	container := NewContainer(Options{Stderr: &bytes.Buffer{}, Env: map[string]string{"IDEADIST_CACHE_DIR": t.TempDir()}})

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				assert.NotNil(t, container.GetLogger())
			}
		}
	}()

	for i := 0; i < 5; i++ {
		_, err := container.Configure(context.Background(), configinfra.LoadOptions{
			WorkDir:   t.TempDir(),
			Overrides: map[string]interface{}{"version": "IC-2023.1"},
		})
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()

	assert.Same(t, container.Logger, container.GetLogger())
}

func TestContainer_Configure(t *testing.T) {
	cacheDir := t.TempDir()
	container := NewContainer(Options{Stderr: &bytes.Buffer{}, Env: map[string]string{"IDEADIST_CACHE_DIR": cacheDir}})

	app, err := container.Configure(context.Background(), configinfra.LoadOptions{
		WorkDir:   t.TempDir(),
		Overrides: map[string]interface{}{"version": "IC-2023.1", "log_level": "warn"},
	})
	require.NoError(t, err)

	assert.Equal(t, "IC-2023.1", app.Config.Version)
	assert.Equal(t, cacheDir, app.Config.CacheDir)
	assert.NotNil(t, app.Acquisition)
	assert.NotNil(t, app.Sandbox)
	assert.Equal(t, "warn", string(container.Logger.GetLogLevel()))
	assert.Equal(t, "env", app.Snapshot["cache_dir"].Source)
}

func TestContainer_ConfigureRejectsInvalidConfig(t *testing.T) {
	container := NewContainer(Options{Stderr: &bytes.Buffer{}, Env: map[string]string{"IDEADIST_TIMEOUT": "forever"}})

	_, err := container.Configure(context.Background(), configinfra.LoadOptions{WorkDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestCLI_SetupClasspathAndClean(t *testing.T) {
	server := newRepositoryServer(t)
	cacheDir := t.TempDir()
	env := map[string]string{
		"IDEADIST_CACHE_DIR":        cacheDir,
		"IDEADIST_REPOSITORY_URL":   server.URL,
		"IDEADIST_DOWNLOAD_SOURCES": "false",
	}

	out, err := run(t, env, "setup", "--version-id", "IC-2023.1", "--plugins", "git4idea", "--consumer", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Distribution ready")
	assert.Contains(t, out, "com.jetbrains.intellij.idea:ideaIC:2023.1@zip")

	dir := filepath.Join(cacheDir, "com.jetbrains.intellij.idea", "ideaIC", "2023.1", "ideaIC-2023.1")
	assert.FileExists(t, filepath.Join(dir, "markerFile"))
	assert.FileExists(t, filepath.Join(dir, "com.jetbrains", "ideaIC", "2023.1", "ivy-demo.xml"))

	out, err = run(t, env, "classpath", "--version-id", "IC-2023.1", "--plugins", "git4idea", "--lines")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "lib", "openapi.jar"),
		filepath.Join(dir, "lib", "util.jar"),
		filepath.Join(dir, "plugins", "git4idea", "lib", "git4idea.jar"),
	}, strings.Fields(out))

	out, err = run(t, env, "descriptor", "--version-id", "IC-2023.1", "--show")
	require.NoError(t, err)
	assert.Contains(t, out, `<info organisation="com.jetbrains" module="ideaIC" revision="2023.1">`)
	assert.NotContains(t, out, "git4idea")

	sandbox := filepath.Join(t.TempDir(), "sandbox")
	out, err = run(t, env, "sandbox", "--version-id", "IC-2023.1", "--dir", sandbox)
	require.NoError(t, err)
	assert.Contains(t, out, "-Didea.home.path="+dir)
	assert.DirExists(t, filepath.Join(sandbox, "system"))

	out, err = run(t, env, "clean", "--version-id", "IC-2023.1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed extracted")
	assert.NoDirExists(t, dir)

	out, err = run(t, env, "clean", "--version-id", "IC-2023.1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to clean")
}

func TestCLI_FetchUnknownVersion(t *testing.T) {
	server := newRepositoryServer(t)
	env := map[string]string{"IDEADIST_CACHE_DIR": t.TempDir(), "IDEADIST_REPOSITORY_URL": server.URL}

	_, err := run(t, env, "fetch", "--version-id", "IC-1999.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve com.jetbrains.intellij.idea:ideaIC:1999.1@zip")
	assert.Contains(t, err.Error(), "no artifact resolved")
}

func TestCLI_RequiresVersion(t *testing.T) {
	_, err := run(t, map[string]string{"IDEADIST_CACHE_DIR": t.TempDir()}, "fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no distribution version configured")
}

func TestCLI_Extract(t *testing.T) {
	dir := t.TempDir()
	archivePath := testfixtures.NewDistributionBuilder().WriteTarGz(t, dir, "ideaIC-2023.1.tar.gz")

	out, err := run(t, map[string]string{"IDEADIST_CACHE_DIR": t.TempDir()}, "extract", archivePath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ideaIC-2023.1"), strings.TrimSpace(out))
	assert.FileExists(t, filepath.Join(dir, "ideaIC-2023.1", "lib", "util.jar"))
}

func TestCLI_ConfigShow(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "ideadist.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: IC-2023.1\nbundled_plugins: [git4idea]\n"), 0644))

	out, err := run(t, map[string]string{"IDEADIST_LOG_LEVEL": "warn"}, "config", "show", "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Current Configuration")
	assert.Contains(t, out, "IC-2023.1")
	assert.Contains(t, out, configPath)
	assert.Contains(t, out, "IDEADIST_LOG_LEVEL")
	assert.Contains(t, out, "git4idea")
}
