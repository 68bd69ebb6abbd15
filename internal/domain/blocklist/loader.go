package blocklist

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/navguard/internal/shared/codec"
)

// ErrRuleFileCorrupt marks a reload aborted because a rule file could not be
// read or parsed. The previous rule set stays live.
var ErrRuleFileCorrupt = errors.New("rule file corrupt")

// Sources locates the rule files. Either path may be empty.
type Sources struct {
	BlocklistPath string
	AllowlistPath string
}

// Paths returns the configured, non-empty paths
func (s Sources) Paths() []string {
	var out []string
	for _, p := range []string{s.BlocklistPath, s.AllowlistPath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadFiles reads both rule files. Missing or blank files yield empty
// documents; any other failure is wrapped in ErrRuleFileCorrupt.
func LoadFiles(src Sources) (BlocklistFile, AllowlistFile, error) {
	var bl BlocklistFile
	var al AllowlistFile

	if src.BlocklistPath != "" {
		if _, err := codec.LoadFile(src.BlocklistPath, &bl); err != nil {
			return BlocklistFile{}, AllowlistFile{}, fmt.Errorf("%w: blocklist: %w", ErrRuleFileCorrupt, err)
		}
	}
	if src.AllowlistPath != "" {
		if _, err := codec.LoadFile(src.AllowlistPath, &al); err != nil {
			return BlocklistFile{}, AllowlistFile{}, fmt.Errorf("%w: allowlist: %w", ErrRuleFileCorrupt, err)
		}
	}
	return bl, al, nil
}
