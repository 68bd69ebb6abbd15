// Package blocklist decides whether a public URL is blocked.
//
// Rules come from two documents: a blocklist (sites, URL substrings,
// keywords) and an allowlist of false positives. Matching order is fixed:
//
//  1. allowlist host or ancestor domain: never blocked
//  2. exact host
//  3. parent domain (host ends with "." + blocked site)
//  4. URL substring
//  5. keyword
//
// URLs that cannot be parsed or have no host are not blocked. Every positive
// match is appended to a bounded FIFO event log.
//
// The live rule set is an immutable snapshot behind an atomic pointer. A
// reload parses both files completely before swapping; if either fails, the
// previous snapshot stays live and the error wraps ErrRuleFileCorrupt.
package blocklist
