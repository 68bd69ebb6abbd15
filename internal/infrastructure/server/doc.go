// Package server assembles navguard: it builds the policy engine from
// configuration, mounts the control API, the event stream and the metrics
// endpoint on a gin router, and runs the rule file watcher next to the HTTP
// server.
//
// Middleware order: recovery, tracing, metrics, request logging, CORS, then
// the optional per-IP rate limit.
package server
