package events

import (
	"time"

	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
)

// Kind names an outbound event
type Kind string

const (
	KindURLBlocked    Kind = "url_blocked"
	KindModeChanged   Kind = "mode_changed"
	KindRulesReloaded Kind = "rules_reloaded"
)

// URLBlocked is published when a top-level navigation is denied
type URLBlocked struct {
	TabID        id.TabID `json:"tab_id,omitempty"`
	URL          string   `json:"url"`
	Reason       string   `json:"reason"`
	Detail       string   `json:"detail,omitempty"`
	Interstitial string   `json:"interstitial,omitempty"`
}

// ModeChanged is published after a committed mode switch
type ModeChanged struct {
	Scope    string     `json:"scope"`
	Mode     types.Mode `json:"mode"`
	Previous types.Mode `json:"previous"`
	TabID    id.TabID   `json:"tab_id,omitempty"`
}

// RulesReloaded is published after a rule reload attempt
type RulesReloaded struct {
	Status string `json:"status"`
	Digest string `json:"digest"`
	Error  string `json:"error,omitempty"`
}

// Event is one outbound notification. Exactly one payload is set.
type Event struct {
	ID        id.EventID `json:"id"`
	Kind      Kind       `json:"kind"`
	Timestamp time.Time  `json:"timestamp"`

	URLBlocked    *URLBlocked    `json:"url_blocked,omitempty"`
	ModeChanged   *ModeChanged   `json:"mode_changed,omitempty"`
	RulesReloaded *RulesReloaded `json:"rules_reloaded,omitempty"`
}

// NewURLBlocked wraps a URLBlocked payload
func NewURLBlocked(p URLBlocked) Event {
	return Event{ID: id.NewEventID(), Kind: KindURLBlocked, Timestamp: time.Now(), URLBlocked: &p}
}

// NewModeChanged wraps a ModeChanged payload
func NewModeChanged(p ModeChanged) Event {
	return Event{ID: id.NewEventID(), Kind: KindModeChanged, Timestamp: time.Now(), ModeChanged: &p}
}

// NewRulesReloaded wraps a RulesReloaded payload
func NewRulesReloaded(p RulesReloaded) Event {
	return Event{ID: id.NewEventID(), Kind: KindRulesReloaded, Timestamp: time.Now(), RulesReloaded: &p}
}
