package resolver

import (
	"testing"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNorm = Normalizer{Scheme: "curated", Suffix: ".curated"}

const homePage = `<!DOCTYPE html><html><head><title>Home</title></head><body><h1>Welcome</h1></body></html>`

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	reg := NewRegistry(testNorm)
	result := reg.Replace([]Location{
		{PublicAddress: "home.curated", InternalAddress: "start", Name: "Start", InlineContent: homePage},
		{PublicAddress: "notes", Name: "Notes", InlineContent: "plain notes"},
		{PublicAddress: "library.curated", Name: "Library", RemoteURL: "https://library.example.org/app/"},
		{PublicAddress: "empty.curated", Name: "Empty"},
		{PublicAddress: "both.curated", InlineContent: "x", RemoteURL: "https://both.example.org"},
		{Name: "no address", InlineContent: "x"},
	})
	require.Equal(t, 5, result.Registered)
	require.Equal(t, []string{"no address"}, result.Skipped)

	return New(testNorm, reg, nil).WithMetrics(monitoring.NewMetrics(prometheus.NewRegistry()))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Address
	}{
		{"home", Address{Host: "home.curated"}},
		{"home.curated", Address{Host: "home.curated"}},
		{"curated://home.curated", Address{Host: "home.curated"}},
		{"CURATED://Home", Address{Host: "home.curated"}},
		{"curated://library.curated/books/1?page=2", Address{Host: "library.curated", Path: "/books/1", Query: "page=2"}},
		{"library?q=go", Address{Host: "library.curated", Query: "q=go"}},
		{"curated://", Address{}},
		{"  ", Address{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, testNorm.Normalize(tt.in))
		})
	}
}

func TestPrefixedShorthandResolvesLikeBare(t *testing.T) {
	r := newTestResolver(t)

	bare := r.Resolve("home")
	prefixed := r.Resolve("curated://home")
	require.True(t, prefixed.Success, prefixed.ErrorMessage)
	assert.Equal(t, bare.Address, prefixed.Address)
	assert.Equal(t, bare.ResolvedURL, prefixed.ResolvedURL)
	assert.Equal(t, "curated://home.curated", testNorm.URL(testNorm.Normalize("curated://home")))
}

func TestNormalizerURL(t *testing.T) {
	a := testNorm.Normalize("library/books?page=2")
	assert.Equal(t, "curated://library.curated/books?page=2", testNorm.URL(a))
}

func TestLooksLikeShorthand(t *testing.T) {
	assert.True(t, testNorm.LooksLikeShorthand("home"))
	assert.True(t, testNorm.LooksLikeShorthand("library.curated/books"))
	assert.False(t, testNorm.LooksLikeShorthand("news.example.com"))
	assert.False(t, testNorm.LooksLikeShorthand("https://home"))
	assert.False(t, testNorm.LooksLikeShorthand("two words"))
}

func TestResolveLocal(t *testing.T) {
	r := newTestResolver(t)

	res := r.Resolve("home")
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, ContentLocal, res.ContentType)
	assert.Equal(t, homePage, res.Content)
	assert.Equal(t, "Home", res.Title)
	assert.Contains(t, res.MIMEType, "text/html")
	assert.Equal(t, "curated://home.curated", res.ResolvedURL)
	require.NotNil(t, res.Location)
	assert.Equal(t, "Start", res.Location.Name)
}

func TestResolveByInternalAddressAndCase(t *testing.T) {
	r := newTestResolver(t)

	res := r.Resolve("curated://START.curated")
	require.True(t, res.Success)
	assert.Equal(t, "home.curated", res.Location.PublicAddress)

	res = r.Resolve("Notes")
	require.True(t, res.Success)
	assert.Contains(t, res.MIMEType, "text/plain")
	assert.Equal(t, "Notes", res.Title)
}

func TestResolveHosted(t *testing.T) {
	r := newTestResolver(t)

	res := r.Resolve("curated://library.curated")
	require.True(t, res.Success)
	assert.Equal(t, ContentHosted, res.ContentType)
	assert.Equal(t, "https://library.example.org/app/", res.ResolvedURL)
	assert.Empty(t, res.Content)

	res = r.Resolve("library/shelves/3?sort=title")
	require.True(t, res.Success)
	assert.Equal(t, "https://library.example.org/app/shelves/3?sort=title", res.ResolvedURL)
}

func TestResolveErrors(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		address string
		err     error
	}{
		{"curated://", ErrEmptyHost},
		{"unknown", ErrUnregistered},
		{"empty", ErrNoContentSource},
		{"both", ErrConflictingSources},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			res := r.Resolve(tt.address)
			assert.False(t, res.Success)
			assert.Equal(t, ContentError, res.ContentType)
			assert.ErrorIs(t, res.Err, tt.err)
			assert.NotEmpty(t, res.ErrorMessage)
		})
	}
}

func TestRegistryReplaceIsAtomic(t *testing.T) {
	r := newTestResolver(t)
	require.True(t, r.Resolve("home").Success)

	r.Registry().Replace([]Location{{PublicAddress: "other", InlineContent: "x"}})

	assert.False(t, r.Resolve("home").Success)
	assert.True(t, r.Resolve("other").Success)
	assert.Equal(t, 1, r.Registry().Len())
}

func TestRemoteHosts(t *testing.T) {
	r := newTestResolver(t)
	assert.Equal(t, []string{"library.example.org"}, r.Registry().RemoteHosts())
}
