package resolver

import (
	"strings"
)

// Address is a private address split into its parts. Host is lowercased
// and, for shorthand input, already carries the namespace suffix.
type Address struct {
	Host  string `json:"host"`
	Path  string `json:"path,omitempty"`
	Query string `json:"query,omitempty"`
}

// Normalizer expands and splits addresses in one private namespace
type Normalizer struct {
	Scheme string // e.g. "curated"
	Suffix string // e.g. ".curated"
}

// Prefix returns the scheme prefix, e.g. "curated://"
func (n Normalizer) Prefix() string {
	return n.Scheme + "://"
}

// Normalize strips the scheme prefix, expands shorthand and splits the
// address at the first "/" and "?". "home" and "curated://home" both become
// host "home.curated"; a host carrying another scheme is left alone.
func (n Normalizer) Normalize(address string) Address {
	rest := strings.TrimSpace(address)
	prefixed := false
	if p := n.Prefix(); len(rest) >= len(p) && strings.EqualFold(rest[:len(p)], p) {
		rest = rest[len(p):]
		prefixed = true
	}

	var a Address
	host := rest
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		host = rest[:i]
		tail := rest[i:]
		if q := strings.IndexByte(tail, '?'); q >= 0 {
			a.Path, a.Query = tail[:q], tail[q+1:]
		} else {
			a.Path = tail
		}
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	a.Host = host

	suffix := strings.ToLower(n.Suffix)
	if host == "" || suffix == "" || strings.HasSuffix(host, suffix) {
		return a
	}
	if prefixed || !strings.Contains(rest, "://") {
		a.Host = host + suffix
	}
	return a
}

// URL renders a in canonical private form
func (n Normalizer) URL(a Address) string {
	var b strings.Builder
	b.WriteString(n.Prefix())
	b.WriteString(a.Host)
	b.WriteString(a.Path)
	if a.Query != "" {
		b.WriteByte('?')
		b.WriteString(a.Query)
	}
	return b.String()
}

// IsPrivate reports whether raw is addressed in the namespace
func (n Normalizer) IsPrivate(raw string) bool {
	raw = strings.TrimSpace(raw)
	p := n.Prefix()
	return len(raw) >= len(p) && strings.EqualFold(raw[:len(p)], p)
}

// LooksLikeShorthand reports whether typed input is a bare private name
// such as "home" or "library.curated" rather than a public address
func (n Normalizer) LooksLikeShorthand(input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || strings.ContainsAny(input, " :") {
		return false
	}
	host := input
	if i := strings.IndexAny(input, "/?"); i >= 0 {
		host = input[:i]
	}
	return strings.HasSuffix(host, strings.ToLower(n.Suffix)) || !strings.Contains(host, ".")
}
