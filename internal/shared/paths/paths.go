package paths

import (
	"path/filepath"
)

// DataDir is the default root for policy data files
const DataDir = "data"

// Default file names under DataDir
const (
	BlocklistFile = "blocklist.json"
	AllowlistFile = "allowlist.json"
	LocationsFile = "locations.yaml"
	LocationsDir  = "locations.d"
)

// Layout resolves the policy data files under a root directory
type Layout struct {
	Root string
}

// Default returns the layout rooted at DataDir
func Default() Layout {
	return Layout{Root: DataDir}
}

// Blocklist returns the blocklist file path
func (l Layout) Blocklist() string {
	return filepath.Join(l.Root, BlocklistFile)
}

// Allowlist returns the allowlist file path
func (l Layout) Allowlist() string {
	return filepath.Join(l.Root, AllowlistFile)
}

// Locations returns the location registry file path
func (l Layout) Locations() string {
	return filepath.Join(l.Root, LocationsFile)
}

// LocationsDir returns the per-location directory path
func (l Layout) LocationsDir() string {
	return filepath.Join(l.Root, LocationsDir)
}
