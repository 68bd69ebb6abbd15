// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Each engine component receives a named child logger, so every line carries
// a "component" field (blocklist, resolver, interceptor, session, ...).
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	log := logger.Component("blocklist")
//	log.Info("rules reloaded", zap.Int("blocked_sites", n))
package logging
