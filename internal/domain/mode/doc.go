// Package mode tracks the browsing mode of each session scope and decides
// which URLs a mode may load.
//
// Curated mode is restricted to the private scheme, internal schemes and an
// explicit companion set; Open mode loads the public web. Mode changes are
// announced synchronously to listeners, and a panicking listener is
// recovered and logged without undoing the committed change.
package mode
