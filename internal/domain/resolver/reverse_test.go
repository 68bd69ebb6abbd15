package resolver

import (
	"sync"
	"testing"

	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseIndexRoundTrip(t *testing.T) {
	r := newTestResolver(t)
	ri := NewReverseIndex()
	tab := id.TabID("tab_a")

	res := r.Resolve("curated://library.curated")
	require.True(t, res.Success)
	ri.Record(tab, res.ResolvedURL, "curated://library.curated")

	tests := []string{
		"https://library.example.org/app/",
		"https://library.example.org/app",
		"https://www.library.example.org/app/",
		"https://library.example.org/app/shelves/9",
	}
	for _, u := range tests {
		t.Run(u, func(t *testing.T) {
			addr, ok := ri.Lookup(tab, u)
			require.True(t, ok)
			assert.Equal(t, "curated://library.curated", addr)
		})
	}
}

func TestReverseIndexWWWRecorded(t *testing.T) {
	ri := NewReverseIndex()
	tab := id.TabID("tab_a")
	ri.Record(tab, "https://www.example.org/", "curated://portal.curated")

	addr, ok := ri.Lookup(tab, "https://example.org")
	require.True(t, ok)
	assert.Equal(t, "curated://portal.curated", addr)
}

func TestReverseIndexScopedPerTab(t *testing.T) {
	ri := NewReverseIndex()
	ri.Record("tab_a", "https://library.example.org/", "curated://library.curated")

	_, ok := ri.Lookup("tab_b", "https://library.example.org/")
	assert.False(t, ok)

	_, ok = ri.Lookup("tab_a", "https://elsewhere.example.org/")
	assert.False(t, ok)
}

func TestReverseIndexForget(t *testing.T) {
	ri := NewReverseIndex()
	ri.Record("tab_a", "https://a.example/", "curated://a.curated")
	ri.Record("tab_b", "https://b.example/", "curated://b.curated")

	ri.Forget("tab_a")
	ri.Forget("tab_missing")

	assert.Zero(t, ri.Len("tab_a"))
	_, ok := ri.Lookup("tab_b", "https://b.example/")
	assert.True(t, ok)
}

func TestReverseIndexIgnoresEmpty(t *testing.T) {
	ri := NewReverseIndex()
	ri.Record("tab_a", "", "curated://a.curated")
	ri.Record("tab_a", "https://a.example/", "")
	assert.Zero(t, ri.Len("tab_a"))
}

func TestReverseIndexConcurrentAccess(t *testing.T) {
	ri := NewReverseIndex()
	tab := id.TabID("tab_a")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ri.Record(tab, "https://a.example/", "curated://a.curated")
		}()
		go func() {
			defer wg.Done()
			ri.Lookup(tab, "https://a.example")
		}()
	}
	wg.Wait()

	addr, ok := ri.Lookup(tab, "https://a.example")
	require.True(t, ok)
	assert.Equal(t, "curated://a.curated", addr)
}
