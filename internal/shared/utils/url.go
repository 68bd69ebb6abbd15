package utils

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Internal resource schemes are never blockable and never mode-restricted
var internalSchemes = map[string]bool{
	"about":    true,
	"data":     true,
	"file":     true,
	"devtools": true,
}

// Scheme returns the lowercased scheme of raw, or "" when raw has none.
// It does not require raw to be otherwise parseable.
func Scheme(raw string) string {
	raw = strings.TrimSpace(raw)
	i := strings.IndexByte(raw, ':')
	if i <= 0 {
		return ""
	}
	s := raw[:i]
	for j, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return ""
		}
	}
	return strings.ToLower(s)
}

// IsInternalScheme reports whether raw uses an internal resource scheme
func IsInternalScheme(raw string) bool {
	return internalSchemes[Scheme(raw)]
}

// IsWebScheme reports whether raw is http or https
func IsWebScheme(raw string) bool {
	s := Scheme(raw)
	return s == "http" || s == "https"
}

// NormalizeHost lowercases host, strips any port and trailing dot, and
// converts internationalized names to their ASCII form.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	host = strings.Trim(host, "[]")
	if host == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// HostOf parses raw as an absolute URL and returns its normalized host.
// ok is false for unparsable or host-less URLs.
func HostOf(raw string) (host string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	host = NormalizeHost(u.Hostname())
	return host, host != ""
}

// NormalizeRuleHost reduces a rule entry to a bare host. Entries may carry a
// protocol, path or port; all of them are dropped.
func NormalizeRuleHost(entry string) string {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return ""
	}
	if strings.Contains(entry, "://") {
		if h, ok := HostOf(entry); ok {
			return h
		}
		entry = entry[strings.Index(entry, "://")+3:]
	}
	if i := strings.IndexAny(entry, "/?#"); i >= 0 {
		entry = entry[:i]
	}
	entry = strings.TrimPrefix(entry, "*.")
	return NormalizeHost(entry)
}

// HostMatches reports whether host equals domain or is one of its subdomains
func HostMatches(host, domain string) bool {
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// ToggleTrailingSlash adds a trailing slash to raw, or removes the one it has
func ToggleTrailingSlash(raw string) string {
	if strings.HasSuffix(raw, "/") {
		return strings.TrimSuffix(raw, "/")
	}
	return raw + "/"
}

// ToggleWWW adds or removes the "www." prefix on the host of raw.
// It returns raw unchanged when raw has no host.
func ToggleWWW(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if strings.HasPrefix(strings.ToLower(u.Host), "www.") {
		u.Host = u.Host[4:]
	} else {
		u.Host = "www." + u.Host
	}
	return u.String()
}

// StripWWW removes a leading "www." label from host
func StripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}
