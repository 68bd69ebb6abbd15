package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fastManifestSettings() ManifestSettings {
	s := DefaultManifestSettings()
	s.Timeout = 2 * time.Second
	s.RetryMax = 1
	s.RetryWaitMin = time.Millisecond
	s.RetryWaitMax = 5 * time.Millisecond
	s.Breaker = resilience.Settings{FailureThreshold: 2, Cooldown: time.Minute}
	return s
}

func TestLoaderFileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "locations.yaml")
	writeFile(t, file, `
locations:
  - public_address: home.curated
    name: Home
    inline_content: "<html><head><title>Home</title></head></html>"
  - public_address: library.curated
    remote_url: https://library.example.org/
`)
	locDir := filepath.Join(dir, "locations.d")
	writeFile(t, filepath.Join(locDir, "10-override.json"),
		`{"locations": [{"public_address": "home.curated", "name": "Home v2", "inline_content": "v2"}]}`)
	writeFile(t, filepath.Join(locDir, "nested", "extra.toml"),
		"[[locations]]\npublic_address = \"extra.curated\"\ninline_content = \"extra\"\n")
	writeFile(t, filepath.Join(locDir, "README.md"), "ignored")

	loader := NewLoader(Sources{Path: file, Dir: locDir}, false, nil)
	reg := NewRegistry(testNorm)
	result, err := loader.LoadInto(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Registered)
	assert.Equal(t, 3, result.Keys)
	assert.Len(t, reg.Locations(), 3)

	home, ok := reg.Lookup("home.curated")
	require.True(t, ok)
	assert.Equal(t, "Home v2", home.Name)

	_, ok = reg.Lookup("extra.curated")
	assert.True(t, ok)
}

func TestLoaderMissingSources(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(Sources{
		Path: filepath.Join(dir, "missing.yaml"),
		Dir:  filepath.Join(dir, "missing.d"),
	}, false, nil)

	locs, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestLoaderCorruptFileKeepsRegistry(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "locations.json")
	writeFile(t, file, `{"locations": [{"public_address": "home", "inline_content": "x"}]}`)

	reg := NewRegistry(testNorm)
	loader := NewLoader(Sources{Path: file}, false, nil)
	_, err := loader.LoadInto(context.Background(), reg)
	require.NoError(t, err)

	writeFile(t, file, `{"locations": [`)
	_, err = loader.LoadInto(context.Background(), reg)
	require.Error(t, err)

	_, ok := reg.Lookup("home.curated")
	assert.True(t, ok)
}

func TestLoaderSanitizes(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "locations.json")
	writeFile(t, file, `{"locations": [{
		"public_address": "home",
		"name": "<b>Home</b>",
		"description": "<script>alert(1)</script>Start here",
		"inline_content": "<p onclick=\"x()\">Hi</p><script>alert(1)</script>"
	}]}`)

	locs, err := NewLoader(Sources{Path: file}, true, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "Home", locs[0].Name)
	assert.Equal(t, "Start here", locs[0].Description)
	assert.NotContains(t, locs[0].InlineContent, "script")
	assert.NotContains(t, locs[0].InlineContent, "onclick")
	assert.Contains(t, locs[0].InlineContent, "Hi")
}

func TestManifestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte("locations:\n  - public_address: remote.curated\n    inline_content: remote\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	file := filepath.Join(dir, "locations.json")
	writeFile(t, file, `{"locations": [{"public_address": "home", "inline_content": "x"}]}`)

	manifestURL := srv.URL + "/manifest.yaml"
	client := NewManifestClient(manifestURL, fastManifestSettings(), nil)
	loader := NewLoader(Sources{Path: file, ManifestURL: manifestURL}, false, nil).WithManifestClient(client)

	locs, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "remote.curated", locs[1].PublicAddress)
}

func TestManifestFailureFallsBackAndTripsBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	file := filepath.Join(dir, "locations.json")
	writeFile(t, file, `{"locations": [{"public_address": "home", "inline_content": "x"}]}`)

	client := NewManifestClient(srv.URL+"/manifest.json", fastManifestSettings(), nil)
	loader := NewLoader(Sources{Path: file, ManifestURL: srv.URL + "/manifest.json"}, false, nil).
		WithManifestClient(client)

	for i := 0; i < 2; i++ {
		locs, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, locs, 1)
	}
	assert.Equal(t, resilience.StateOpen, client.Breaker().State())

	before := hits.Load()
	_, err := client.Fetch(context.Background())
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, hits.Load())
}
