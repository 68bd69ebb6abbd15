// Package config provides 12-factor configuration management for navguard.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP control API settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting for the control API
//   - Rules: Blocklist/allowlist files, watching and the block event log
//   - Curated: Private namespace, companion hosts and location sources
//   - Open: Open mode home address
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Control API on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - BLOCKLIST_PATH, ALLOWLIST_PATH, RULES_WATCH, RULES_DEBOUNCE, EVENT_LOG_SIZE
//   - CURATED_SCHEME, CURATED_SUFFIX, CURATED_HOME, COMPANION_DOMAINS, ASSET_HOSTS
//   - LOCATIONS_PATH, LOCATIONS_DIR, LOCATIONS_MANIFEST_URL, SANITIZE_INLINE
//   - OPEN_HOME
package config
