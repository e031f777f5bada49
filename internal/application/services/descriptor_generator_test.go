package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"ideadist.dev/cli/internal/core/domain"
	"ideadist.dev/cli/internal/core/testfixtures"
	"ideadist.dev/cli/internal/infrastructure/ivy"
	"ideadist.dev/cli/internal/infrastructure/logging"
)

func newGenerator(tools string) *DescriptorGenerator {
	return NewDescriptorGenerator(ivy.NewWriter(), func() string { return tools }, logging.NewNullGateway())
}

func names(entries []domain.ArtifactEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestDescriptorGenerator_LibrariesAndRequestedPlugins(t *testing.T) {
	dir := t.TempDir()
	testfixtures.NewDistributionBuilder().
		WithFile("lib/ant/ant.jar", "nested, not collected").
		WithFile("lib/readme.txt", "not a jar").
		WithFile("lib64/native.jar", "native").
		WithFile("library.jar", "top-level file, not collected").
		WithFile("bin/idea.jar", "not under lib").
		WithBundledPlugin("git4idea", "git4idea.jar").
		WithBundledPlugin("maven", "maven.jar").
		WriteTree(t, dir)

	descriptor, err := newGenerator("").Build(GenerateInput{
		Directory:      dir,
		Module:         "ideaIC",
		Version:        "2023.1",
		BundledPlugins: []string{"git4idea"},
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.Configuration{domain.ConfigurationCompile, domain.ConfigurationSources, domain.ConfigurationRuntime}, descriptor.Configurations)
	assert.Equal(t, []string{
		"lib/openapi",
		"lib/util",
		"lib64/native",
		"plugins/git4idea/lib/git4idea",
	}, names(descriptor.Artifacts))

	for _, a := range descriptor.Artifacts {
		assert.Equal(t, domain.ConfigurationCompile, a.Configuration)
		assert.Equal(t, dir, a.BaseDirectory)
		assert.Equal(t, "jar", a.Extension)
		assert.FileExists(t, a.File)
	}

	pluginArtifacts := 0
	for _, a := range descriptor.Artifacts {
		if strings.HasPrefix(a.Name, "plugins/git4idea/") {
			pluginArtifacts++
		}
		assert.NotContains(t, a.Name, "maven")
	}
	assert.Equal(t, 1, pluginArtifacts)
}

func TestDescriptorGenerator_MissingPluginIsSkipped(t *testing.T) {
	dir := t.TempDir()
	testfixtures.NewDistributionBuilder().WriteTree(t, dir)

	descriptor, err := newGenerator("").Build(GenerateInput{
		Directory:      dir,
		Module:         "ideaIC",
		Version:        "2023.1",
		BundledPlugins: []string{"does-not-exist"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/openapi", "lib/util"}, names(descriptor.Artifacts))
}

func TestDescriptorGenerator_DirectoryWithPatternCharacters(t *testing.T) {
	for _, name := range []string{"cache[1]", "ideaIC-2023.1*", "what?"} {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), name)
			testfixtures.NewDistributionBuilder().
				WithBundledPlugin("git4idea", "git4idea.jar").
				WriteTree(t, dir)

			descriptor, err := newGenerator("").Build(GenerateInput{
				Directory:      dir,
				Module:         "ideaIC",
				Version:        "2023.1",
				BundledPlugins: []string{"git4idea"},
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"lib/openapi", "lib/util", "plugins/git4idea/lib/git4idea"}, names(descriptor.Artifacts))
			for _, a := range descriptor.Artifacts {
				assert.FileExists(t, a.File)
			}
		})
	}
}

func TestDescriptorGenerator_RejectsPluginNamesOutsidePlugins(t *testing.T) {
	dir := t.TempDir()
	testfixtures.NewDistributionBuilder().
		WithBundledPlugin("git4idea", "git4idea.jar").
		WithBundledPlugin("maven", "maven.jar").
		WriteTree(t, dir)

	for _, name := range []string{"../x", "..", ".", "git4idea/../maven", `a\b`} {
		t.Run(name, func(t *testing.T) {
			_, err := newGenerator("").Build(GenerateInput{
				Directory:      dir,
				Module:         "ideaIC",
				Version:        "2023.1",
				BundledPlugins: []string{name},
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid bundled plugin name")
		})
	}

	// A wildcard is a literal directory name, never a pattern.
	descriptor, err := newGenerator("").Build(GenerateInput{
		Directory:      dir,
		Module:         "ideaIC",
		Version:        "2023.1",
		BundledPlugins: []string{"*"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/openapi", "lib/util"}, names(descriptor.Artifacts))
}

func TestDescriptorGenerator_RuntimeToolsAndSources(t *testing.T) {
	dir := t.TempDir()
	testfixtures.NewDistributionBuilder().WriteTree(t, dir)

	jdk := t.TempDir()
	tools := filepath.Join(jdk, "lib", "tools.jar")
	require.NoError(t, os.MkdirAll(filepath.Dir(tools), 0755))
	require.NoError(t, os.WriteFile(tools, []byte("tools"), 0644))

	sources := filepath.Join(t.TempDir(), "ideaIC-2023.1-sources.jar")
	require.NoError(t, os.WriteFile(sources, []byte("src"), 0644))

	descriptor, err := newGenerator(tools).Build(GenerateInput{
		Directory:   dir,
		Module:      "ideaIC",
		Version:     "2023.1",
		SourcesPath: sources,
	})
	require.NoError(t, err)

	runtime := descriptor.ArtifactsIn(domain.ConfigurationRuntime)
	require.Len(t, runtime, 1)
	assert.Equal(t, "tools", runtime[0].Name)
	assert.Equal(t, filepath.Join(jdk, "lib"), runtime[0].BaseDirectory)

	src := descriptor.ArtifactsIn(domain.ConfigurationSources)
	require.Len(t, src, 1)
	assert.Equal(t, "ideaIC", src[0].Name)
	assert.Equal(t, "sources", src[0].Classifier)
	assert.Equal(t, sources, src[0].File)
}

func TestDescriptorGenerator_MissingToolsArchiveIsIgnored(t *testing.T) {
	dir := t.TempDir()
	testfixtures.NewDistributionBuilder().WriteTree(t, dir)

	descriptor, err := newGenerator(filepath.Join(dir, "nope", "tools.jar")).Build(GenerateInput{Directory: dir, Module: "ideaIC", Version: "2023.1"})
	require.NoError(t, err)
	assert.Empty(t, descriptor.ArtifactsIn(domain.ConfigurationRuntime))
}

func TestDescriptorGenerator_GenerateWritesDescriptor(t *testing.T) {
	dir := t.TempDir()
	testfixtures.NewDistributionBuilder().WriteTree(t, dir)

	descriptor, path, err := newGenerator("").Generate(context.Background(), GenerateInput{
		Directory:    dir,
		Module:       "ideaIC",
		Version:      "2023.1",
		ConsumerName: "demo",
		SourcesPath:  "/cache/ideaIC-2023.1-sources.jar",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "com.jetbrains", "ideaIC", "2023.1", "ivy-demo.xml"), path)
	assert.Len(t, descriptor.Artifacts, 3)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), `conf="sources"`))
	assert.Contains(t, string(content), `<artifact name="ideaIC" type="jar" ext="jar" conf="sources" m:classifier="sources"></artifact>`)
}

func TestDescriptorGenerator_GenerateUnwritable(t *testing.T) {
	dir := t.TempDir()
	testfixtures.NewDistributionBuilder().WriteTree(t, dir)
	// A regular file where the descriptor directory should go.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com.jetbrains"), []byte("x"), 0644))

	_, _, err := newGenerator("").Generate(context.Background(), GenerateInput{
		Directory: dir, Module: "ideaIC", Version: "2023.1", ConsumerName: "demo",
	})

	var writeErr *domain.DescriptorWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, filepath.Join(dir, "com.jetbrains", "ideaIC", "2023.1", "ivy-demo.xml"), writeErr.Path)
	assert.FileExists(t, filepath.Join(dir, "lib", "openapi.jar"))
}

func TestJDKToolsLocator(t *testing.T) {
	jdk := t.TempDir()
	tools := filepath.Join(jdk, "lib", "tools.jar")
	require.NoError(t, os.MkdirAll(filepath.Dir(tools), 0755))
	require.NoError(t, os.WriteFile(tools, []byte("tools"), 0644))

	assert.Equal(t, tools, JDKToolsLocator("", jdk)())
	assert.Equal(t, tools, JDKToolsLocator("", filepath.Join(jdk, "jre"))())
	assert.Equal(t, "/explicit/tools.jar", JDKToolsLocator("/explicit/tools.jar", jdk)())
	assert.Empty(t, JDKToolsLocator("", t.TempDir())())
}

// Property: unchanged inputs always produce byte-identical descriptors, no
// matter in which order files were created or plugins were requested.
func TestDescriptorGenerator_DeterminismProperty(t *testing.T) {
	root := t.TempDir()
	run := 0

	rapid.Check(t, func(rt *rapid.T) {
		run++
		dir := filepath.Join(root, fmt.Sprintf("run-%d", run))

		files := rapid.SliceOfNDistinct(rapid.StringMatching(`(lib[a-z]{0,2}|plugins/(git4idea|maven|svn)/lib)/[a-z]{1,5}\.jar`), 0, 12, rapid.ID[string]).Draw(rt, "files")
		builder := testfixtures.NewEmptyDistributionBuilder()
		for _, f := range files {
			builder.WithFile(f, f)
		}
		builder.WriteTree(t, dir)

		plugins := rapid.SliceOfDistinct(rapid.SampledFrom([]string{"git4idea", "maven", "svn", "absent"}), rapid.ID[string]).Draw(rt, "plugins")
		reversed := make([]string, len(plugins))
		for i, p := range plugins {
			reversed[len(plugins)-1-i] = p
		}

		gen := newGenerator("")
		in := GenerateInput{Directory: dir, Module: "ideaIC", Version: "2023.1", ConsumerName: "demo", BundledPlugins: plugins}

		_, path, err := gen.Generate(context.Background(), in)
		if err != nil {
			rt.Fatalf("first generate: %v", err)
		}
		first, err := os.ReadFile(path)
		if err != nil {
			rt.Fatalf("read: %v", err)
		}

		in.BundledPlugins = reversed
		if _, _, err := gen.Generate(context.Background(), in); err != nil {
			rt.Fatalf("second generate: %v", err)
		}
		second, err := os.ReadFile(path)
		if err != nil {
			rt.Fatalf("read: %v", err)
		}

		if !bytes.Equal(first, second) {
			rt.Fatalf("descriptor changed between runs:\n%s\n---\n%s", first, second)
		}
	})
}
