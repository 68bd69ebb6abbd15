// Package middleware provides the HTTP middleware of the control API.
//
// Middleware stack:
//   - CORS: cross-origin access for the browser shell's UI
//   - RateLimit: per-IP token bucket with idle client eviction
//   - Logger: structured request logging with trace fields
//   - Recovery: panic recovery with a JSON 500
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
