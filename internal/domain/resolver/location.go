package resolver

import (
	"errors"
	"strings"
)

var (
	ErrEmptyHost          = errors.New("address has no host")
	ErrUnregistered       = errors.New("address is not registered")
	ErrNoContentSource    = errors.New("location has no content source")
	ErrConflictingSources = errors.New("location has both inline content and a remote url")
)

// Location is a registered private destination. Exactly one of
// InlineContent and RemoteURL must be set for it to resolve.
type Location struct {
	PublicAddress    string `json:"public_address" yaml:"public_address" toml:"public_address"`
	InternalAddress  string `json:"internal_address,omitempty" yaml:"internal_address,omitempty" toml:"internal_address,omitempty"`
	Name             string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	RequiresIdentity bool   `json:"requires_identity,omitempty" yaml:"requires_identity,omitempty" toml:"requires_identity,omitempty"`
	InlineContent    string `json:"inline_content,omitempty" yaml:"inline_content,omitempty" toml:"inline_content,omitempty"`
	RemoteURL        string `json:"remote_url,omitempty" yaml:"remote_url,omitempty" toml:"remote_url,omitempty"`
}

// LocationFile is the on-disk registry document
type LocationFile struct {
	Locations []Location `json:"locations" yaml:"locations" toml:"locations"`
}

// Validate checks the content source invariant
func (l Location) Validate() error {
	inline := strings.TrimSpace(l.InlineContent) != ""
	remote := strings.TrimSpace(l.RemoteURL) != ""
	switch {
	case inline && remote:
		return ErrConflictingSources
	case !inline && !remote:
		return ErrNoContentSource
	}
	return nil
}

// IsHosted reports whether the location is served from a remote URL
func (l Location) IsHosted() bool {
	return strings.TrimSpace(l.RemoteURL) != "" && strings.TrimSpace(l.InlineContent) == ""
}
