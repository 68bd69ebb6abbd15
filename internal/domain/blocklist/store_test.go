package blocklist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBlocklist = `{
  "generated_at": "2024-05-01T00:00:00Z",
  "sources": ["community", "manual"],
  "blocked_sites": ["example.com", "https://Tracker.Example.net:8443/path", "*.ads.example.org"],
  "blocked_keywords": ["casino"],
  "blocked_urls": ["news.example.io/politics"]
}`

const sampleAllowlist = `{
  "allowed_sites": [
    {"domain": "shop.example.com", "reason": "false positive"}
  ]
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newLoadedStore(t *testing.T) (*Store, Sources) {
	t.Helper()
	dir := t.TempDir()
	src := Sources{
		BlocklistPath: filepath.Join(dir, "blocklist.json"),
		AllowlistPath: filepath.Join(dir, "allowlist.json"),
	}
	writeFile(t, src.BlocklistPath, sampleBlocklist)
	writeFile(t, src.AllowlistPath, sampleAllowlist)

	store := NewStore(src, 10, nil).WithMetrics(monitoring.NewMetrics(prometheus.NewRegistry()))
	result, err := store.Reload()
	require.NoError(t, err)
	require.Equal(t, ReloadApplied, result.Status)
	return store, src
}

func TestIsBlocked(t *testing.T) {
	store, _ := newLoadedStore(t)

	tests := []struct {
		name    string
		url     string
		blocked bool
		match   MatchType
		pattern string
	}{
		{"allowlisted subdomain", "https://shop.example.com/x", false, MatchNone, ""},
		{"allowlisted descendant", "https://cdn.shop.example.com/x", false, MatchNone, ""},
		{"sibling subdomain", "https://other.example.com", true, MatchSubdomainOf, "example.com"},
		{"exact host", "https://EXAMPLE.com/", true, MatchExactDomain, "example.com"},
		{"rule with protocol and port", "http://tracker.example.net/pixel", true, MatchExactDomain, "tracker.example.net"},
		{"wildcard rule", "https://x.ads.example.org", true, MatchSubdomainOf, "ads.example.org"},
		{"url substring", "https://news.example.io/Politics/today", true, MatchURLSubstring, "news.example.io/politics"},
		{"keyword", "https://games.example.dev/?q=Casino", true, MatchKeyword, "casino"},
		{"unrelated", "https://example.org/", false, MatchNone, ""},
		{"suffix without dot boundary", "https://notexample.com/", false, MatchNone, ""},
		{"malformed", "http://[::1", false, MatchNone, ""},
		{"hostless scheme", "about:blank", false, MatchNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := store.IsBlocked(tt.url)
			assert.Equal(t, tt.blocked, result.Blocked)
			assert.Equal(t, tt.match, result.MatchType)
			assert.Equal(t, tt.pattern, result.MatchedPattern)
		})
	}
}

func TestAllowOverridesBlock(t *testing.T) {
	store := NewStore(Sources{}, 0, nil)
	store.Apply(
		BlocklistFile{BlockedSites: []string{"example.com", "shop.example.com"}},
		AllowlistFile{AllowedSites: []AllowRule{{Domain: "shop.example.com", Reason: "vendor"}}},
	)

	result := store.IsBlocked("https://shop.example.com/checkout")
	assert.False(t, result.Blocked)
	require.NotNil(t, result.Allowed)
	assert.Equal(t, "vendor", result.Allowed.Reason)
	assert.Empty(t, store.Events(0))
}

func TestCheckRecordsEvents(t *testing.T) {
	store, _ := newLoadedStore(t)

	store.Check("https://other.example.com/a", types.ModeOpen)
	store.IsBlocked("https://example.org/")
	store.Check("https://games.example.dev/casino", types.ModeCurated)

	events := store.Events(0)
	require.Len(t, events, 2)
	assert.Equal(t, "other.example.com", events[0].Domain)
	assert.Equal(t, MatchSubdomainOf, events[0].MatchType)
	assert.Equal(t, types.ModeOpen, events[0].Mode)
	assert.Equal(t, MatchKeyword, events[1].MatchType)
	assert.Equal(t, types.ModeCurated, events[1].Mode)
	assert.NotEmpty(t, events[1].ID)
}

func TestReloadIdempotent(t *testing.T) {
	store, _ := newLoadedStore(t)
	probes := []string{
		"https://shop.example.com/x",
		"https://other.example.com",
		"https://games.example.dev/casino",
		"https://example.org",
	}

	before := make([]BlockResult, len(probes))
	for i, p := range probes {
		before[i] = store.IsBlocked(p)
	}
	digest := store.Meta().Digest

	result, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, ReloadUnchanged, result.Status)
	assert.Equal(t, digest, store.Meta().Digest)

	for i, p := range probes {
		assert.Equal(t, before[i], store.IsBlocked(p), p)
	}
}

func TestReloadReplacesMetadataAndReasons(t *testing.T) {
	store := NewStore(Sources{}, 0, nil)
	rules := []string{"example.com"}

	first := store.Apply(
		BlocklistFile{GeneratedAt: "2024-01-01", Sources: []string{"a"}, BlockedSites: rules},
		AllowlistFile{AllowedSites: []AllowRule{{Domain: "shop.example.com", Reason: "old reason"}}},
	)
	require.Equal(t, ReloadApplied, first.Status)

	second := store.Apply(
		BlocklistFile{GeneratedAt: "2025-06-01", Sources: []string{"a", "b"}, BlockedSites: rules},
		AllowlistFile{AllowedSites: []AllowRule{{Domain: "shop.example.com", Reason: "new reason"}}},
	)
	assert.Equal(t, ReloadApplied, second.Status)
	assert.NotEqual(t, first.Meta.Digest, second.Meta.Digest)

	meta := store.Meta()
	assert.Equal(t, "2025-06-01", meta.GeneratedAt)
	assert.Equal(t, 2, meta.SourceCount)

	result := store.IsBlocked("https://shop.example.com/")
	require.NotNil(t, result.Allowed)
	assert.Equal(t, "new reason", result.Allowed.Reason)

	again := store.Apply(
		BlocklistFile{GeneratedAt: "2025-06-01", Sources: []string{"a", "b"}, BlockedSites: rules},
		AllowlistFile{AllowedSites: []AllowRule{{Domain: "shop.example.com", Reason: "new reason"}}},
	)
	assert.Equal(t, ReloadUnchanged, again.Status)
}

func TestReloadCorruptKeepsPrevious(t *testing.T) {
	store, src := newLoadedStore(t)
	before := store.Meta()

	var reported error
	store.WithDiagnostics(func(err error) { reported = err })

	writeFile(t, src.AllowlistPath, `{"allowed_sites": [`)
	result, err := store.Reload()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuleFileCorrupt))
	assert.Equal(t, ReloadFailed, result.Status)
	assert.ErrorIs(t, reported, ErrRuleFileCorrupt)
	assert.Equal(t, before.Digest, store.Meta().Digest)

	// Old allowlist still in force
	assert.False(t, store.IsBlocked("https://shop.example.com/").Blocked)
}

func TestMissingAndEmptyFilesBlockNothing(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		BlocklistPath: filepath.Join(dir, "missing.json"),
		AllowlistPath: filepath.Join(dir, "allowlist.yaml"),
	}
	writeFile(t, src.AllowlistPath, "   \n")

	store := NewStore(src, 0, nil)
	_, err := store.Reload()
	require.NoError(t, err)

	assert.False(t, store.IsBlocked("https://example.com").Blocked)
	assert.Zero(t, store.Meta().Sites)
}

func TestReloadYAMLReplacesRules(t *testing.T) {
	dir := t.TempDir()
	src := Sources{BlocklistPath: filepath.Join(dir, "blocklist.yaml")}
	writeFile(t, src.BlocklistPath, "blocked_sites:\n  - first.example\n")

	store := NewStore(src, 0, nil)
	_, err := store.Reload()
	require.NoError(t, err)
	assert.True(t, store.IsBlocked("https://first.example").Blocked)

	writeFile(t, src.BlocklistPath, "generated_at: '2024-06-01'\nsources: [manual]\nblocked_sites:\n  - second.example\n")
	result, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, ReloadApplied, result.Status)
	assert.Equal(t, 1, result.Meta.SourceCount)

	assert.False(t, store.IsBlocked("https://first.example").Blocked)
	assert.True(t, store.IsBlocked("https://second.example").Blocked)
}

func TestMetaCounts(t *testing.T) {
	store, _ := newLoadedStore(t)
	meta := store.Meta()

	assert.Equal(t, "2024-05-01T00:00:00Z", meta.GeneratedAt)
	assert.Equal(t, 2, meta.SourceCount)
	assert.Equal(t, 3, meta.Sites)
	assert.Equal(t, 1, meta.Keywords)
	assert.Equal(t, 1, meta.URLs)
	assert.Equal(t, 1, meta.Allowed)
	assert.Len(t, meta.Digest, 64)
}
