package blocklist

import (
	"sort"
	"strings"
	"time"

	"github.com/GriffinCanCode/navguard/internal/shared/utils"
)

// MatchType identifies which rule kind produced a block
type MatchType string

const (
	MatchNone         MatchType = ""
	MatchExactDomain  MatchType = "exact_domain"
	MatchSubdomainOf  MatchType = "subdomain_of"
	MatchURLSubstring MatchType = "url_substring"
	MatchKeyword      MatchType = "keyword"
)

func (m MatchType) String() string {
	if m == MatchNone {
		return "none"
	}
	return string(m)
}

// BlockRule is a single block rule
type BlockRule struct {
	Kind    MatchType `json:"kind"`
	Pattern string    `json:"pattern"`
}

// AllowRule exempts a domain and all of its subdomains from blocking
type AllowRule struct {
	Domain string `json:"domain" yaml:"domain" toml:"domain"`
	Reason string `json:"reason" yaml:"reason" toml:"reason"`
}

// BlocklistFile is the on-disk blocklist document
type BlocklistFile struct {
	GeneratedAt     string   `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
	Sources         []string `json:"sources" yaml:"sources" toml:"sources"`
	BlockedSites    []string `json:"blocked_sites" yaml:"blocked_sites" toml:"blocked_sites"`
	BlockedKeywords []string `json:"blocked_keywords" yaml:"blocked_keywords" toml:"blocked_keywords"`
	BlockedURLs     []string `json:"blocked_urls" yaml:"blocked_urls" toml:"blocked_urls"`
}

// AllowlistFile is the on-disk allowlist document
type AllowlistFile struct {
	AllowedSites []AllowRule `json:"allowed_sites" yaml:"allowed_sites" toml:"allowed_sites"`
}

// RuleSetMeta describes a loaded rule set
type RuleSetMeta struct {
	GeneratedAt string    `json:"generated_at,omitempty"`
	Sources     []string  `json:"sources,omitempty"`
	SourceCount int       `json:"source_count"`
	LoadedAt    time.Time `json:"loaded_at"`
	Digest      string    `json:"digest"`
	Sites       int       `json:"sites"`
	Keywords    int       `json:"keywords"`
	URLs        int       `json:"urls"`
	Allowed     int       `json:"allowed"`
}

// Counts returns rule counts keyed by kind
func (m RuleSetMeta) Counts() map[string]int {
	return map[string]int{
		"sites":    m.Sites,
		"keywords": m.Keywords,
		"urls":     m.URLs,
		"allowed":  m.Allowed,
	}
}

// ruleSet is immutable once built
type ruleSet struct {
	sites    map[string]struct{}
	keywords []string
	urls     []string
	allow    map[string]AllowRule
	meta     RuleSetMeta
}

func emptyRuleSet() *ruleSet {
	return buildRuleSet(BlocklistFile{}, AllowlistFile{})
}

// buildRuleSet normalizes both documents into lookup tables. Host entries
// that reduce to nothing are dropped; text patterns are lowercased.
func buildRuleSet(bl BlocklistFile, al AllowlistFile) *ruleSet {
	rs := &ruleSet{
		sites: make(map[string]struct{}, len(bl.BlockedSites)),
		allow: make(map[string]AllowRule, len(al.AllowedSites)),
	}

	for _, entry := range bl.BlockedSites {
		if h := utils.NormalizeRuleHost(entry); h != "" {
			rs.sites[h] = struct{}{}
		}
	}
	rs.keywords = normalizePatterns(bl.BlockedKeywords)
	rs.urls = normalizePatterns(bl.BlockedURLs)

	for _, rule := range al.AllowedSites {
		h := utils.NormalizeRuleHost(rule.Domain)
		if h == "" {
			continue
		}
		rs.allow[h] = AllowRule{Domain: h, Reason: rule.Reason}
	}

	sources := bl.Sources
	if sources == nil {
		sources = []string{}
	}
	rs.meta = RuleSetMeta{
		GeneratedAt: bl.GeneratedAt,
		Sources:     sources,
		SourceCount: len(sources),
		Sites:       len(rs.sites),
		Keywords:    len(rs.keywords),
		URLs:        len(rs.urls),
		Allowed:     len(rs.allow),
	}
	rs.meta.Digest = rs.digest()
	return rs
}

func normalizePatterns(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	// Longest first so the reported pattern is the most specific one
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// digest covers the rules, the allow reasons and the list's generated_at and
// sources. LoadedAt is excluded so identical content reloads as unchanged.
func (rs *ruleSet) digest() string {
	allow := make([]string, 0, len(rs.allow))
	for h, rule := range rs.allow {
		allow = append(allow, h+"\x1f"+rule.Reason)
	}
	return utils.DefaultHasher().HashSections(map[string][]string{
		"sites":    keys(rs.sites),
		"keywords": rs.keywords,
		"urls":     rs.urls,
		"allow":    allow,
		"meta":     append([]string{"generated_at=" + rs.meta.GeneratedAt}, rs.meta.Sources...),
	})
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// match evaluates host and the lowercased URL against the rule set in order:
// allowlist, exact host, parent domain, URL substring, keyword.
func (rs *ruleSet) match(host, lowerURL string) (BlockRule, *AllowRule) {
	for h := host; h != ""; h = parentDomain(h) {
		if rule, ok := rs.allow[h]; ok {
			return BlockRule{}, &rule
		}
	}

	if _, ok := rs.sites[host]; ok {
		return BlockRule{Kind: MatchExactDomain, Pattern: host}, nil
	}
	for h := parentDomain(host); h != ""; h = parentDomain(h) {
		if _, ok := rs.sites[h]; ok {
			return BlockRule{Kind: MatchSubdomainOf, Pattern: h}, nil
		}
	}

	for _, p := range rs.urls {
		if strings.Contains(lowerURL, p) {
			return BlockRule{Kind: MatchURLSubstring, Pattern: p}, nil
		}
	}
	for _, k := range rs.keywords {
		if strings.Contains(lowerURL, k) {
			return BlockRule{Kind: MatchKeyword, Pattern: k}, nil
		}
	}
	return BlockRule{}, nil
}

// parentDomain drops the leftmost label: "a.b.c" -> "b.c", "c" -> ""
func parentDomain(host string) string {
	i := strings.IndexByte(host, '.')
	if i < 0 {
		return ""
	}
	return host[i+1:]
}
