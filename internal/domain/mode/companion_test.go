package mode

import (
	"testing"

	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetHost(t *testing.T) {
	a, ok := ParseAssetHost("https://Fonts.Example.com/static/**")
	require.True(t, ok)
	assert.Equal(t, AssetHost{Host: "fonts.example.com", Pattern: "/static/**"}, a)

	a, ok = ParseAssetHost("cdn.example.net")
	require.True(t, ok)
	assert.Empty(t, a.Pattern)

	_, ok = ParseAssetHost("")
	assert.False(t, ok)

	_, ok = ParseAssetHost("cdn.example.net/[broken")
	assert.False(t, ok)
}

func TestCompanionsApproves(t *testing.T) {
	c := NewCompanions(
		[]string{"identity.example.org"},
		[]string{"fonts.example.com/css/**", "img.example.net"},
	)

	tests := []struct {
		name string
		url  string
		rt   types.ResourceType
		want bool
	}{
		{"companion document", "https://identity.example.org/login", types.ResourceMainFrame, true},
		{"companion subdomain script", "https://api.identity.example.org/x.js", types.ResourceScript, true},
		{"asset host pattern match", "https://fonts.example.com/css/a/b.css", types.ResourceStylesheet, true},
		{"asset host pattern miss", "https://fonts.example.com/js/a.css", types.ResourceStylesheet, false},
		{"asset host wrong type", "https://img.example.net/a.js", types.ResourceScript, false},
		{"asset host any path", "https://img.example.net/logo.png", types.ResourceImage, true},
		{"asset host document", "https://img.example.net/", types.ResourceMainFrame, false},
		{"unknown host", "https://news.example.com/", types.ResourceImage, false},
		{"malformed", "://", types.ResourceImage, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Approves(tt.url, tt.rt))
		})
	}
}

func TestCompanionsWithIsCopy(t *testing.T) {
	base := NewCompanions([]string{"a.example"}, nil)
	next := base.With("https://b.example/path", "a.example")

	assert.Equal(t, []string{"a.example"}, base.Domains())
	assert.Equal(t, []string{"a.example", "b.example"}, next.Domains())
}

func TestNilCompanions(t *testing.T) {
	var c *Companions
	assert.False(t, c.IsCompanion("a.example"))
	assert.False(t, c.Approves("https://a.example/x.png", types.ResourceImage))
}
