package mode

import (
	"net/url"
	"slices"
	"strings"

	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/GriffinCanCode/navguard/internal/shared/utils"
	"github.com/bmatcuk/doublestar/v4"
)

// AssetHost approves passive assets (stylesheet, font, image) served from a
// public host into the curated partition. Pattern restricts the URL path;
// an empty pattern approves every path on the host.
type AssetHost struct {
	Host    string `json:"host"`
	Pattern string `json:"pattern,omitempty"`
}

// ParseAssetHost parses entries of the form "host" or "host/path/**"
func ParseAssetHost(entry string) (AssetHost, bool) {
	entry = strings.TrimSpace(entry)
	if i := strings.Index(entry, "://"); i >= 0 {
		entry = entry[i+3:]
	}
	host, pattern := entry, ""
	if i := strings.IndexByte(entry, '/'); i >= 0 {
		host, pattern = entry[:i], entry[i:]
	}
	host = utils.NormalizeHost(host)
	if host == "" {
		return AssetHost{}, false
	}
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return AssetHost{}, false
	}
	return AssetHost{Host: host, Pattern: pattern}, true
}

func (a AssetHost) matches(host, path string) bool {
	if !utils.HostMatches(host, a.Host) {
		return false
	}
	if a.Pattern == "" {
		return true
	}
	if path == "" {
		path = "/"
	}
	ok, err := doublestar.Match(a.Pattern, path)
	return err == nil && ok
}

// Companions is an immutable set of public hosts the curated partition may
// reach. Companion domains are approved for every resource type; asset hosts
// only for stylesheets, fonts and images.
type Companions struct {
	domains []string
	assets  []AssetHost
}

// NewCompanions builds a companion set. Invalid entries are skipped.
func NewCompanions(domains, assetHosts []string) *Companions {
	c := &Companions{}
	for _, d := range domains {
		if h := utils.NormalizeRuleHost(d); h != "" && !slices.Contains(c.domains, h) {
			c.domains = append(c.domains, h)
		}
	}
	for _, entry := range assetHosts {
		if a, ok := ParseAssetHost(entry); ok {
			c.assets = append(c.assets, a)
		}
	}
	return c
}

// With returns a copy that also approves the given domains
func (c *Companions) With(domains ...string) *Companions {
	next := &Companions{
		domains: slices.Clone(c.Domains()),
		assets:  slices.Clone(c.Assets()),
	}
	for _, d := range domains {
		if h := utils.NormalizeRuleHost(d); h != "" && !slices.Contains(next.domains, h) {
			next.domains = append(next.domains, h)
		}
	}
	return next
}

// Domains returns the companion domains
func (c *Companions) Domains() []string {
	if c == nil {
		return nil
	}
	return c.domains
}

// Assets returns the asset host rules
func (c *Companions) Assets() []AssetHost {
	if c == nil {
		return nil
	}
	return c.assets
}

// IsCompanion reports whether host is a companion domain or one of its subdomains
func (c *Companions) IsCompanion(host string) bool {
	host = utils.NormalizeHost(host)
	for _, d := range c.Domains() {
		if utils.HostMatches(host, d) {
			return true
		}
	}
	return false
}

// IsApprovedAsset reports whether raw is a passive asset under an asset host
func (c *Companions) IsApprovedAsset(raw string, rt types.ResourceType) bool {
	if !rt.IsAsset() {
		return false
	}
	return c.underAssetHost(raw)
}

// Approves reports whether the curated partition may load raw as rt
func (c *Companions) Approves(raw string, rt types.ResourceType) bool {
	if host, ok := utils.HostOf(raw); ok && c.IsCompanion(host) {
		return true
	}
	return c.IsApprovedAsset(raw, rt)
}

func (c *Companions) underAssetHost(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	host := utils.NormalizeHost(u.Hostname())
	for _, a := range c.Assets() {
		if a.matches(host, u.EscapedPath()) {
			return true
		}
	}
	return false
}
