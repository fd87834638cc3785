package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/adapter"
	"github.com/platinummonkey/flare/pkg/codegen/cache"
	"github.com/platinummonkey/flare/pkg/codegen/manifest"
	"github.com/platinummonkey/flare/pkg/codegen/platforms"
	"github.com/platinummonkey/flare/pkg/descriptor"
	"github.com/platinummonkey/flare/pkg/observability"
)

func testDescriptor(kinds ...platforms.Kind) *descriptor.PluginDescriptor {
	d := &descriptor.PluginDescriptor{
		EntryPoint:           "com.example.MyPlugin",
		Name:                 "MyPlugin",
		Description:          "An example plugin",
		Version:              "1.0.0",
		Website:              "https://example.com",
		Authors:              []string{"alice", "bob"},
		Dependencies:         []string{"LuckPerms"},
		OptionalDependencies: []string{"PlaceholderAPI"},
		SDKVersion:           "2.1.0",
	}
	for _, k := range kinds {
		d.Platforms = append(d.Platforms, descriptor.Target{Kind: k})
	}
	return d
}

func allPlatforms() *descriptor.PluginDescriptor {
	return testDescriptor(platforms.Velocity, platforms.Spigot, platforms.BungeeCord)
}

// readTree returns every regular file under root keyed by slash path
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestNewEngine_NilConfig(t *testing.T) {
	e := NewEngine(nil)
	require.NotNil(t, e)
	assert.Equal(t, DefaultConfig().MaxParallelWorkers, e.config.MaxParallelWorkers)
	assert.NotNil(t, e.logger)
	assert.Nil(t, e.cache)
}

func TestRender_AllPlatforms(t *testing.T) {
	artifacts, err := NewEngine(nil).Render(context.Background(), allPlatforms())
	require.NoError(t, err)

	var paths []string
	for _, a := range artifacts {
		paths = append(paths, a.Path)
	}
	assert.Equal(t, []string{
		"generated/resources/bungee.yml",
		"generated/resources/plugin.yml",
		"generated/resources/velocity-plugin.json",
		"generated/sources/com/example/platform/BungeeCordEntry.java",
		"generated/sources/com/example/platform/PlatformUtil.java",
		"generated/sources/com/example/platform/SpigotEntry.java",
		"generated/sources/com/example/platform/VelocityEntry.java",
	}, paths)

	assert.Len(t, codegen.Filter(artifacts, codegen.KindManifest), 3)
	assert.Len(t, codegen.Filter(artifacts, codegen.KindSource), 3)
	assert.Len(t, codegen.Filter(artifacts, codegen.KindSupport), 1)
}

func TestRender_EmptyPlatforms(t *testing.T) {
	artifacts, err := NewEngine(nil).Render(context.Background(), testDescriptor())
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestRender_InvalidDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *descriptor.PluginDescriptor)
		wantErr error
	}{
		{
			name:    "missing entry point",
			mutate:  func(d *descriptor.PluginDescriptor) { d.EntryPoint = "" },
			wantErr: descriptor.ErrMissingField,
		},
		{
			name:    "invalid entry point",
			mutate:  func(d *descriptor.PluginDescriptor) { d.EntryPoint = "MyPlugin" },
			wantErr: descriptor.ErrInvalidEntryPoint,
		},
		{
			name: "duplicate platform",
			mutate: func(d *descriptor.PluginDescriptor) {
				d.Platforms = append(d.Platforms, descriptor.Target{Kind: platforms.Spigot})
			},
			wantErr: descriptor.ErrDuplicatePlatform,
		},
		{
			name: "unsupported platform",
			mutate: func(d *descriptor.PluginDescriptor) {
				d.Platforms = []descriptor.Target{{Kind: platforms.Kind("forge")}}
			},
			wantErr: platforms.ErrUnsupportedPlatform,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := allPlatforms()
			tt.mutate(d)
			_, err := NewEngine(nil).Render(context.Background(), d)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(nil).Render(ctx, allPlatforms())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_WritesEveryArtifact(t *testing.T) {
	root := t.TempDir()
	e := NewEngine(nil)

	result, err := e.Generate(context.Background(), allPlatforms(), root)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, e.Fingerprint(allPlatforms()), result.Fingerprint)
	assert.NotEqual(t, allPlatforms().Fingerprint(), result.Fingerprint)
	assert.False(t, result.CacheHit)
	require.Len(t, result.Artifacts, 7)

	rendered, err := e.Render(context.Background(), allPlatforms())
	require.NoError(t, err)

	files := readTree(t, root)
	assert.Len(t, files, 7)
	for i, a := range rendered {
		assert.Equal(t, string(a.Content), files[a.Path], a.Path)
		assert.Equal(t, filepath.Join(root, filepath.FromSlash(a.Path)), result.Artifacts[i].Path)
		assert.Equal(t, a.Kind, result.Artifacts[i].Kind)
		assert.Equal(t, a.Size(), result.Artifacts[i].Size)
	}

	info, err := os.Stat(filepath.Join(root, "generated", "resources", "plugin.yml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestGenerate_Deterministic(t *testing.T) {
	e := NewEngine(nil)
	rootA := t.TempDir()
	rootB := t.TempDir()

	_, err := e.Generate(context.Background(), allPlatforms(), rootA)
	require.NoError(t, err)
	_, err = e.Generate(context.Background(), allPlatforms(), rootB)
	require.NoError(t, err)
	assert.Equal(t, readTree(t, rootA), readTree(t, rootB))

	// re-running in place leaves identical files and no temp files
	first := readTree(t, rootA)
	_, err = e.Generate(context.Background(), allPlatforms(), rootA)
	require.NoError(t, err)
	assert.Equal(t, first, readTree(t, rootA))
}

func TestGenerate_OverwritesPreviousOutput(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "generated", "resources", "plugin.yml")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("main: stale.Entry\nextra: junk\n"), 0o644))

	_, err := NewEngine(nil).Generate(context.Background(), testDescriptor(platforms.Spigot), root)
	require.NoError(t, err)

	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.NotContains(t, string(data), "junk")
}

func TestGenerate_SpigotAndBungeeCord(t *testing.T) {
	root := t.TempDir()
	_, err := NewEngine(nil).Generate(context.Background(), testDescriptor(platforms.Spigot, platforms.BungeeCord), root)
	require.NoError(t, err)

	readMain := func(name string) string {
		data, err := os.ReadFile(filepath.Join(root, "generated", "resources", name))
		require.NoError(t, err)
		var m struct {
			Main string `yaml:"main"`
		}
		require.NoError(t, yaml.Unmarshal(data, &m))
		return m.Main
	}

	assert.Equal(t, "com.example.platform.SpigotEntry", readMain("plugin.yml"))
	assert.Equal(t, "com.example.platform.BungeeCordEntry", readMain("bungee.yml"))
	assert.NoFileExists(t, filepath.Join(root, "generated", "resources", "velocity-plugin.json"))
}

func TestGenerate_EmptyPlatforms(t *testing.T) {
	root := t.TempDir()
	result, err := NewEngine(nil).Generate(context.Background(), testDescriptor(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Artifacts)
	assert.Empty(t, readTree(t, root))
}

func TestGenerate_PartialWriteFailure(t *testing.T) {
	root := t.TempDir()
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// a directory where plugin.yml belongs makes the rename fail
	blocked := filepath.Join(root, "generated", "resources", "plugin.yml")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0o755))

	result, err := NewEngine(nil, WithMetrics(metrics)).Generate(context.Background(), allPlatforms(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.True(t, IsWriteError(err))

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, []string{blocked}, writeErr.Paths())
	assert.Contains(t, err.Error(), blocked)

	// every other artifact was still written
	require.NotNil(t, result)
	assert.Len(t, result.Artifacts, 6)
	assert.FileExists(t, filepath.Join(root, "generated", "resources", "bungee.yml"))
	assert.FileExists(t, filepath.Join(root, "generated", "sources", "com", "example", "platform", "VelocityEntry.java"))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(root, "generated", "resources"))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.Contains(entry.Name(), ".tmp-"), entry.Name())
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WriteErrorsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GenerationsTotal.WithLabelValues(observability.StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ArtifactsWrittenTotal.WithLabelValues("bungeecord", string(codegen.KindManifest))))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ArtifactsWrittenTotal.WithLabelValues("spigot", string(codegen.KindManifest))))
}

func TestGenerate_InvalidInput(t *testing.T) {
	e := NewEngine(nil)

	_, err := e.Generate(context.Background(), allPlatforms(), "")
	assert.ErrorIs(t, err, ErrInvalidOutputRoot)

	d := allPlatforms()
	d.Platforms = append(d.Platforms, descriptor.Target{Kind: platforms.Velocity})
	root := t.TempDir()
	_, err = e.Generate(context.Background(), d, root)
	assert.ErrorIs(t, err, descriptor.ErrDuplicatePlatform)
	assert.Empty(t, readTree(t, root))
}

func TestGenerate_Cache(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	c := cache.NewMemoryCache(nil)
	e := NewEngine(nil, WithCache(c), WithMetrics(metrics))

	first, err := e.Generate(context.Background(), allPlatforms(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	// platform order does not change the fingerprint
	reordered := testDescriptor(platforms.BungeeCord, platforms.Velocity, platforms.Spigot)
	rootB := t.TempDir()
	second, err := e.Generate(context.Background(), reordered, rootB)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Len(t, readTree(t, rootB), 7)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheRequestsTotal.WithLabelValues(observability.CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheRequestsTotal.WithLabelValues(observability.CacheMiss)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.GenerationsTotal.WithLabelValues(observability.StatusSuccess)))
}

func TestGenerate_CacheKeyedByOutputDigest(t *testing.T) {
	shared := cache.NewMemoryCache(nil)

	older := NewEngine(nil, WithCache(shared))
	older.outputDigest = "older-templates"
	first, err := older.Generate(context.Background(), allPlatforms(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	current := NewEngine(nil, WithCache(shared))
	second, err := current.Generate(context.Background(), allPlatforms(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, second.CacheHit, "output of a build with other templates must not be reused")
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)

	again, err := current.Generate(context.Background(), allPlatforms(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
}

func TestOutputDigest(t *testing.T) {
	assert.Equal(t, OutputDigest(), OutputDigest())
	assert.Contains(t, OutputDigest(), adapter.TemplateDigest())
	assert.Contains(t, OutputDigest(), manifest.EncodingVersion)
}

func TestGenerate_Concurrent(t *testing.T) {
	e := NewEngine(nil, WithCache(cache.NewMemoryCache(nil)))

	roots := make([]string, 8)
	for i := range roots {
		roots[i] = t.TempDir()
	}

	var wg sync.WaitGroup
	errs := make([]error, len(roots))
	for i, root := range roots {
		wg.Add(1)
		go func(i int, root string) {
			defer wg.Done()
			_, errs[i] = e.Generate(context.Background(), allPlatforms(), root)
		}(i, root)
	}
	wg.Wait()

	want := readTree(t, roots[0])
	for i, root := range roots {
		require.NoError(t, errs[i])
		assert.Equal(t, want, readTree(t, root))
	}
}

func TestGenerate_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	e := NewEngine(nil, WithTracer(tp.Tracer("test")))
	_, err := e.Generate(context.Background(), testDescriptor(platforms.Spigot), t.TempDir())
	require.NoError(t, err)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.ElementsMatch(t, []string{"flare.Render", "flare.Generate"}, names)
}
