package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheme(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://example.com", "https"},
		{"HTTP://EXAMPLE.COM", "http"},
		{"curated://home.curated", "curated"},
		{"about:blank", "about"},
		{"data:text/plain,hi", "data"},
		{"devtools://devtools/bundled/inspector.html", "devtools"},
		{"home", ""},
		{"example.com:8080/x", "example.com"},
		{"1http://x", ""},
		{":nothing", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Scheme(tt.raw), tt.raw)
	}
}

func TestIsInternalScheme(t *testing.T) {
	assert.True(t, IsInternalScheme("about:blank"))
	assert.True(t, IsInternalScheme("file:///etc/hosts"))
	assert.True(t, IsInternalScheme("data:image/png;base64,AAAA"))
	assert.True(t, IsInternalScheme("devtools://devtools"))
	assert.False(t, IsInternalScheme("https://example.com"))
	assert.False(t, IsInternalScheme("curated://home.curated"))
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeHost("Example.COM."))
	assert.Equal(t, "example.com", NormalizeHost("example.com:8443"))
	assert.Equal(t, "xn--bcher-kva.example", NormalizeHost("bücher.example"))
	assert.Equal(t, "", NormalizeHost("  "))
}

func TestHostOf(t *testing.T) {
	host, ok := HostOf("https://Shop.Example.com:443/x?y=1")
	assert.True(t, ok)
	assert.Equal(t, "shop.example.com", host)

	_, ok = HostOf("mailto:someone@example.com")
	assert.False(t, ok)

	_, ok = HostOf("http://[::1")
	assert.False(t, ok)
}

func TestNormalizeRuleHost(t *testing.T) {
	tests := map[string]string{
		"example.com":                  "example.com",
		"HTTPS://Example.com/path?q=1": "example.com",
		"example.com:8080":             "example.com",
		"example.com/some/path":        "example.com",
		"*.ads.example.net":            "ads.example.net",
		"  tracker.example.org.  ":     "tracker.example.org",
		"":                             "",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeRuleHost(in), in)
	}
}

func TestHostMatches(t *testing.T) {
	assert.True(t, HostMatches("example.com", "example.com"))
	assert.True(t, HostMatches("a.b.example.com", "example.com"))
	assert.False(t, HostMatches("badexample.com", "example.com"))
	assert.False(t, HostMatches("", "example.com"))
}

func TestToggles(t *testing.T) {
	assert.Equal(t, "https://example.com/", ToggleTrailingSlash("https://example.com"))
	assert.Equal(t, "https://example.com", ToggleTrailingSlash("https://example.com/"))
	assert.Equal(t, "https://www.example.com/a", ToggleWWW("https://example.com/a"))
	assert.Equal(t, "https://example.com/a", ToggleWWW("https://www.example.com/a"))
	assert.Equal(t, "not a url", ToggleWWW("not a url"))
}
