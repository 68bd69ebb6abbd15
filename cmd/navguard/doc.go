// Package main is the navguard command.
//
// navguard runs the mode-isolated navigation policy engine as a local
// service for a browser shell, or answers one-off questions about the
// configured rules.
//
// Commands:
//   - serve: control API, event stream, metrics and rule watcher
//   - check: decide one request for a partition
//   - resolve: resolve one private address
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Serve on the default loopback port
//	navguard serve --data-dir ./data
//
//	# Development mode (colored logs, debug level)
//	navguard serve --dev
//
//	# Is this URL allowed in the open partition?
//	navguard check https://ads.example.com/ --partition open --fail-on-deny
package main
