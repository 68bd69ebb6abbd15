package interceptor

import (
	"net/url"
	"strings"
	"time"

	"github.com/GriffinCanCode/navguard/internal/domain/blocklist"
	"github.com/GriffinCanCode/navguard/internal/domain/mode"
	"github.com/GriffinCanCode/navguard/internal/domain/resolver"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/GriffinCanCode/navguard/internal/shared/utils"
	"go.uber.org/zap"
)

// Blocklist checks public URLs
type Blocklist interface {
	Check(url string, m types.Mode) blocklist.BlockResult
}

// Resolver resolves private addresses
type Resolver interface {
	Resolve(address string) resolver.Resolution
}

// ModePolicy identifies the private scheme and the curated companion set
type ModePolicy interface {
	IsCustomScheme(raw string) bool
	Companions() *mode.Companions
}

// Interceptor decides every request. Evaluate is synchronous and performs
// no I/O; its only side effect is block-event logging in the blocklist.
type Interceptor struct {
	modes    ModePolicy
	blocks   Blocklist
	resolver Resolver
	pages    *Pages
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an interceptor
func New(modes ModePolicy, blocks Blocklist, res Resolver, logger *zap.Logger) *Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interceptor{
		modes:    modes,
		blocks:   blocks,
		resolver: res,
		pages:    NewPages(),
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate applies, in order: internal scheme, curated private address,
// curated public URL, open private address, blocklist. The first decisive
// step wins. Denied top-level navigations carry a rendered interstitial.
func (i *Interceptor) Evaluate(req Request) Decision {
	d := i.evaluate(req)

	if d.Outcome == OutcomeDeny {
		i.logger.Info("request denied",
			zap.String("partition", string(req.Partition.ID)),
			zap.String("url", req.URL),
			zap.String("resource_type", string(req.ResourceType)),
			zap.String("reason", d.Reason.String()),
			zap.String("detail", d.Detail),
		)
		if req.ResourceType.IsDocument() {
			html, err := i.pages.Render(d)
			if err != nil {
				i.logger.Error("interstitial render failed", zap.Error(err))
			}
			d.Interstitial = html
		}
	}
	return d
}

func (i *Interceptor) evaluate(req Request) Decision {
	base := Decision{
		Partition:    req.Partition,
		URL:          req.URL,
		ResourceType: req.ResourceType,
		TabID:        req.TabID,
		DecidedAt:    i.now(),
	}
	if base.ResourceType == "" {
		base.ResourceType = types.ResourceMainFrame
	}

	if utils.IsInternalScheme(req.URL) {
		return allow(base)
	}

	custom := i.modes.IsCustomScheme(req.URL)
	malformed := !wellFormed(req.URL)

	switch req.Partition.Mode {
	case types.ModeCurated:
		if custom {
			return i.evaluatePrivate(base, req)
		}
		if malformed || !i.modes.Companions().Approves(req.URL, base.ResourceType) {
			return crossMode(base, malformed, "public address in curated mode")
		}
	case types.ModeOpen:
		if custom {
			return crossMode(base, false, "private address in open mode")
		}
	default:
		return crossMode(base, malformed, "unknown partition mode")
	}

	if malformed {
		base.Outcome = OutcomeAllow
		base.Reason = ReasonMalformedURL
		return base
	}

	result := i.blocks.Check(req.URL, req.Partition.Mode)
	if result.Blocked {
		base.Outcome = OutcomeDeny
		base.Reason = ReasonBlocklistMatch
		base.Detail = "matched " + result.MatchType.String()
		base.MatchedRule = &MatchedRule{Kind: string(result.MatchType), Pattern: result.MatchedPattern}
		return base
	}
	if result.Allowed != nil {
		base.MatchedRule = &MatchedRule{Kind: "allow", Pattern: result.Allowed.Domain, Reason: result.Allowed.Reason}
	}
	return allow(base)
}

func (i *Interceptor) evaluatePrivate(base Decision, req Request) Decision {
	if host, ok := utils.HostOf(req.URL); ok {
		c := i.modes.Companions()
		if c.IsCompanion(host) || c.IsApprovedAsset(req.URL, base.ResourceType) {
			return allow(base)
		}
	}

	res := i.resolver.Resolve(req.URL)
	if !res.Success {
		base.Outcome = OutcomeDeny
		base.Reason = ReasonUnregisteredAddress
		base.Detail = res.ErrorMessage
		return base
	}

	if res.ContentType == resolver.ContentLocal {
		base.Outcome = OutcomeResolveThenAllow
		base.ResolvedURL = res.ResolvedURL
		base.Content = res.Content
		base.ContentType = res.MIMEType
		base.Title = res.Title
		return base
	}

	// A hosted location must point at the public web. Aliases of other
	// private addresses are rejected rather than chased.
	if i.modes.IsCustomScheme(res.ResolvedURL) {
		base.Outcome = OutcomeDeny
		base.Reason = ReasonUnregisteredAddress
		base.ResolvedURL = res.ResolvedURL
		base.Detail = "private address resolves back into the private namespace"
		return base
	}

	// Hosted content is a public URL and goes through the full policy again
	second := i.evaluate(Request{
		Partition:    req.Partition,
		URL:          res.ResolvedURL,
		ResourceType: base.ResourceType,
		TabID:        req.TabID,
	})

	if !second.Allowed() {
		second.URL = req.URL
		second.ResolvedURL = res.ResolvedURL
		if second.Detail != "" {
			second.Detail = "resolved to " + res.ResolvedURL + ": " + second.Detail
		} else {
			second.Detail = "resolved to " + res.ResolvedURL
		}
		return second
	}

	base.Outcome = OutcomeResolveThenAllow
	base.ResolvedURL = res.ResolvedURL
	base.Title = res.Title
	base.MatchedRule = second.MatchedRule
	return base
}

func allow(d Decision) Decision {
	d.Outcome = OutcomeAllow
	return d
}

func crossMode(d Decision, malformed bool, detail string) Decision {
	d.Outcome = OutcomeDeny
	d.Reason = ReasonCrossModeViolation
	d.Detail = detail
	if malformed {
		d.Detail = "malformed url in curated mode"
	}
	return d
}

// wellFormed reports whether raw parses as an absolute URL with a scheme
func wellFormed(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != ""
}
