package interceptor

import (
	"time"

	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
)

// Outcome is what the host should do with a request
type Outcome string

const (
	OutcomeAllow            Outcome = "allow"
	OutcomeDeny             Outcome = "deny"
	OutcomeResolveThenAllow Outcome = "resolve_then_allow"
)

func (o Outcome) String() string {
	return string(o)
}

// Reason classifies why a decision was made. Deny decisions always carry
// one; an allowed malformed URL carries ReasonMalformedURL.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonMalformedURL        Reason = "malformed_url"
	ReasonUnregisteredAddress Reason = "unregistered_address"
	ReasonCrossModeViolation  Reason = "cross_mode_violation"
	ReasonBlocklistMatch      Reason = "blocklist_match"
)

func (r Reason) String() string {
	if r == ReasonNone {
		return "none"
	}
	return string(r)
}

// MatchedRule is the block or allow rule behind a decision
type MatchedRule struct {
	Kind    string `json:"kind"`
	Pattern string `json:"pattern"`
	Reason  string `json:"reason,omitempty"`
}

// Request is one request issued into a partition
type Request struct {
	Partition    types.Partition    `json:"partition"`
	URL          string             `json:"url"`
	ResourceType types.ResourceType `json:"resource_type"`
	TabID        id.TabID           `json:"tab_id,omitempty"`
}

// Decision is the verdict for one request. It is a value and is never
// modified after Evaluate returns it.
type Decision struct {
	Outcome      Outcome            `json:"outcome"`
	Reason       Reason             `json:"reason,omitempty"`
	Detail       string             `json:"detail,omitempty"`
	ResolvedURL  string             `json:"resolved_url,omitempty"`
	Content      string             `json:"content,omitempty"`
	ContentType  string             `json:"content_type,omitempty"`
	Title        string             `json:"title,omitempty"`
	MatchedRule  *MatchedRule       `json:"matched_rule,omitempty"`
	Interstitial string             `json:"interstitial,omitempty"`
	Partition    types.Partition    `json:"partition"`
	URL          string             `json:"url"`
	ResourceType types.ResourceType `json:"resource_type"`
	TabID        id.TabID           `json:"tab_id,omitempty"`
	DecidedAt    time.Time          `json:"decided_at"`
}

// Allowed reports whether the request may proceed
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow || d.Outcome == OutcomeResolveThenAllow
}

// Page returns the interstitial page kind for a denied decision
func (d Decision) Page() Page {
	if d.Outcome != OutcomeDeny {
		return PageNone
	}
	return PageFor(d.Reason)
}
