package interceptor

import (
	"testing"

	"github.com/GriffinCanCode/navguard/internal/domain/blocklist"
	"github.com/GriffinCanCode/navguard/internal/domain/mode"
	"github.com/GriffinCanCode/navguard/internal/domain/resolver"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	openPartition    = types.PartitionFor(types.ModeOpen)
	curatedPartition = types.PartitionFor(types.ModeCurated)
)

type fixture struct {
	interceptor *Interceptor
	modes       *mode.Registry
	blocks      *blocklist.Store
	resolver    *resolver.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	norm := resolver.Normalizer{Scheme: "curated", Suffix: ".curated"}

	reg := resolver.NewRegistry(norm)
	reg.Replace([]resolver.Location{
		{PublicAddress: "home.curated", Name: "Home", InlineContent: "<html><head><title>Home</title></head><body>hi</body></html>"},
		{PublicAddress: "library.curated", Name: "Library", RemoteURL: "https://library.example.org/"},
		{PublicAddress: "tracker.curated", Name: "Tracker", RemoteURL: "https://ads.example.com/"},
		{PublicAddress: "loop.curated", RemoteURL: "curated://loop.curated"},
		{PublicAddress: "alias.curated", RemoteURL: "curated://home.curated"},
		{PublicAddress: "empty.curated"},
	})
	res := resolver.New(norm, reg, nil)

	companions := mode.NewCompanions(
		[]string{"identity.curated", "id.example.org"},
		[]string{"fonts.example.net"},
	).With(reg.RemoteHosts()...)
	modes := mode.NewRegistry(mode.Settings{Scheme: "curated"}, companions, nil)

	blocks := blocklist.NewStore(blocklist.Sources{}, 0, nil)
	blocks.Apply(
		blocklist.BlocklistFile{BlockedSites: []string{"example.com"}, BlockedKeywords: []string{"casino"}},
		blocklist.AllowlistFile{AllowedSites: []blocklist.AllowRule{{Domain: "shop.example.com", Reason: "false positive"}}},
	)

	return &fixture{
		interceptor: New(modes, blocks, res, nil),
		modes:       modes,
		blocks:      blocks,
		resolver:    res,
	}
}

func (f *fixture) eval(p types.Partition, url string, rt types.ResourceType) Decision {
	return f.interceptor.Evaluate(Request{Partition: p, URL: url, ResourceType: rt})
}

func TestEvaluateOrder(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		partition types.Partition
		url       string
		rt        types.ResourceType
		outcome   Outcome
		reason    Reason
	}{
		{"internal scheme open", openPartition, "about:blank", types.ResourceMainFrame, OutcomeAllow, ReasonNone},
		{"internal scheme curated", curatedPartition, "data:text/html,hi", types.ResourceMainFrame, OutcomeAllow, ReasonNone},
		{"devtools curated", curatedPartition, "devtools://devtools/bundled/inspector.html", types.ResourceMainFrame, OutcomeAllow, ReasonNone},
		{"curated companion private host", curatedPartition, "curated://identity.curated/login", types.ResourceMainFrame, OutcomeAllow, ReasonNone},
		{"curated local content", curatedPartition, "curated://home.curated", types.ResourceMainFrame, OutcomeResolveThenAllow, ReasonNone},
		{"curated unregistered", curatedPartition, "curated://nowhere.curated", types.ResourceMainFrame, OutcomeDeny, ReasonUnregisteredAddress},
		{"curated no content source", curatedPartition, "curated://empty.curated", types.ResourceMainFrame, OutcomeDeny, ReasonUnregisteredAddress},
		{"curated hosted allowed", curatedPartition, "curated://library.curated/shelf", types.ResourceMainFrame, OutcomeResolveThenAllow, ReasonNone},
		{"curated hosted blocked on second pass", curatedPartition, "curated://tracker.curated", types.ResourceMainFrame, OutcomeDeny, ReasonBlocklistMatch},
		{"curated hosted loop", curatedPartition, "curated://loop.curated", types.ResourceMainFrame, OutcomeDeny, ReasonUnregisteredAddress},
		{"curated hosted alias of private address", curatedPartition, "curated://alias.curated", types.ResourceMainFrame, OutcomeDeny, ReasonUnregisteredAddress},
		{"curated public", curatedPartition, "https://news.example.org", types.ResourceMainFrame, OutcomeDeny, ReasonCrossModeViolation},
		{"curated companion public", curatedPartition, "https://id.example.org/auth", types.ResourceScript, OutcomeAllow, ReasonNone},
		{"curated asset font", curatedPartition, "https://fonts.example.net/a.woff2", types.ResourceFont, OutcomeAllow, ReasonNone},
		{"curated asset host script", curatedPartition, "https://fonts.example.net/a.js", types.ResourceScript, OutcomeDeny, ReasonCrossModeViolation},
		{"curated malformed", curatedPartition, "not a url", types.ResourceMainFrame, OutcomeDeny, ReasonCrossModeViolation},
		{"open private", openPartition, "curated://home.curated", types.ResourceMainFrame, OutcomeDeny, ReasonCrossModeViolation},
		{"open blocked", openPartition, "https://other.example.com", types.ResourceMainFrame, OutcomeDeny, ReasonBlocklistMatch},
		{"open allowlisted", openPartition, "https://shop.example.com/x", types.ResourceMainFrame, OutcomeAllow, ReasonNone},
		{"open keyword", openPartition, "https://games.example.net/casino", types.ResourceImage, OutcomeDeny, ReasonBlocklistMatch},
		{"open clean", openPartition, "https://news.example.org", types.ResourceMainFrame, OutcomeAllow, ReasonNone},
		{"open malformed", openPartition, "not a url", types.ResourceMainFrame, OutcomeAllow, ReasonMalformedURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.eval(tt.partition, tt.url, tt.rt)
			assert.Equal(t, tt.outcome, d.Outcome, d.Detail)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.url, d.URL)
			assert.Equal(t, tt.partition, d.Partition)
		})
	}
}

func TestLocalResolutionCarriesContent(t *testing.T) {
	f := newFixture(t)

	d := f.eval(curatedPartition, "curated://home", types.ResourceMainFrame)
	require.True(t, d.Allowed())
	assert.Contains(t, d.Content, "hi")
	assert.Contains(t, d.ContentType, "text/html")
	assert.Equal(t, "Home", d.Title)
	assert.Equal(t, "curated://home.curated", d.ResolvedURL)
	assert.Empty(t, d.Interstitial)
}

func TestHostedResolution(t *testing.T) {
	f := newFixture(t)

	d := f.eval(curatedPartition, "curated://library.curated/shelf", types.ResourceMainFrame)
	require.Equal(t, OutcomeResolveThenAllow, d.Outcome)
	assert.Equal(t, "https://library.example.org/shelf", d.ResolvedURL)
	assert.Empty(t, d.Content)

	denied := f.eval(curatedPartition, "curated://tracker.curated", types.ResourceMainFrame)
	assert.Equal(t, "curated://tracker.curated", denied.URL)
	assert.Equal(t, "https://ads.example.com/", denied.ResolvedURL)
	require.NotNil(t, denied.MatchedRule)
	assert.Equal(t, "example.com", denied.MatchedRule.Pattern)
	assert.Contains(t, denied.Interstitial, "blocked-content")
}

func TestHostedPrivateAliasDenied(t *testing.T) {
	f := newFixture(t)

	d := f.eval(curatedPartition, "curated://alias.curated", types.ResourceMainFrame)
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonUnregisteredAddress, d.Reason)
	assert.Equal(t, "curated://home.curated", d.ResolvedURL)
	assert.Empty(t, d.Content)
	assert.NotEmpty(t, d.Interstitial)
}

func TestInterstitialOnlyForDocuments(t *testing.T) {
	f := newFixture(t)

	doc := f.eval(openPartition, "curated://home.curated", types.ResourceMainFrame)
	assert.Equal(t, PageWrongMode, doc.Page())
	assert.Contains(t, doc.Interstitial, `content="wrong-mode"`)

	img := f.eval(openPartition, "curated://home.curated/logo.png", types.ResourceImage)
	assert.Equal(t, OutcomeDeny, img.Outcome)
	assert.Empty(t, img.Interstitial)
}

func TestBlockEventsRecordMode(t *testing.T) {
	f := newFixture(t)

	f.eval(openPartition, "https://other.example.com", types.ResourceMainFrame)
	f.eval(curatedPartition, "curated://tracker.curated", types.ResourceMainFrame)

	events := f.blocks.Events(0)
	require.Len(t, events, 2)
	assert.Equal(t, types.ModeOpen, events[0].Mode)
	assert.Equal(t, types.ModeCurated, events[1].Mode)
}

func TestAllowRuleReported(t *testing.T) {
	f := newFixture(t)

	d := f.eval(openPartition, "https://shop.example.com/", types.ResourceMainFrame)
	require.NotNil(t, d.MatchedRule)
	assert.Equal(t, "allow", d.MatchedRule.Kind)
	assert.Equal(t, "false positive", d.MatchedRule.Reason)
}

type mockBlocklist struct {
	mock.Mock
}

func (m *mockBlocklist) Check(url string, md types.Mode) blocklist.BlockResult {
	args := m.Called(url, md)
	return args.Get(0).(blocklist.BlockResult)
}

func TestBlocklistSkippedBeforeStepFive(t *testing.T) {
	f := newFixture(t)
	blocks := &mockBlocklist{}
	blocks.On("Check", "https://news.example.org", types.ModeOpen).Return(blocklist.BlockResult{}).Once()

	i := New(f.modes, blocks, f.resolver, nil)

	i.Evaluate(Request{Partition: openPartition, URL: "about:blank"})
	i.Evaluate(Request{Partition: openPartition, URL: "curated://home.curated"})
	i.Evaluate(Request{Partition: curatedPartition, URL: "https://news.example.org"})
	i.Evaluate(Request{Partition: curatedPartition, URL: "curated://home.curated"})
	d := i.Evaluate(Request{Partition: openPartition, URL: "https://news.example.org"})

	assert.True(t, d.Allowed())
	assert.Equal(t, types.ResourceMainFrame, d.ResourceType)
	blocks.AssertExpectations(t)
}

func TestIsolationInvariant(t *testing.T) {
	f := newFixture(t)
	private := []string{"curated://home.curated", "curated://library.curated", "curated://x.curated/y"}
	public := []string{"https://news.example.org", "http://example.net/a", "https://library.example.org.evil.test/"}

	for _, u := range private {
		assert.False(t, f.modes.IsURLValidForMode(u, types.ModeOpen), u)
		assert.False(t, f.eval(openPartition, u, types.ResourceMainFrame).Allowed(), u)
	}
	for _, u := range public {
		assert.False(t, f.modes.IsURLValidForMode(u, types.ModeCurated), u)
		assert.False(t, f.eval(curatedPartition, u, types.ResourceMainFrame).Allowed(), u)
	}
}
