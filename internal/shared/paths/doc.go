// Package paths provides the standard on-disk layout for policy data.
//
// # Directory Structure
//
//	data/
//	  ├── blocklist.json     (compiled block rules)
//	  ├── allowlist.json     (false-positive overrides)
//	  ├── locations.yaml     (private location registry)
//	  └── locations.d/       (one location file per entry)
//
// Every path can be overridden through configuration; these constants only
// supply defaults.
package paths
