// Package events carries outbound notifications (blocked navigations, mode
// changes, rule reloads) from the engine to the host. Delivery is
// best-effort and non-blocking so a slow consumer never stalls a decision.
package events
