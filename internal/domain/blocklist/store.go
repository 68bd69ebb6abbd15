package blocklist

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/GriffinCanCode/navguard/internal/shared/utils"
	"go.uber.org/zap"
)

// BlockResult is the outcome of a blocklist check
type BlockResult struct {
	Blocked        bool       `json:"blocked"`
	MatchType      MatchType  `json:"match_type,omitempty"`
	MatchedPattern string     `json:"matched_pattern,omitempty"`
	Domain         string     `json:"domain,omitempty"`
	Allowed        *AllowRule `json:"allowed,omitempty"`
}

// Rule returns the block rule that matched
func (r BlockResult) Rule() BlockRule {
	return BlockRule{Kind: r.MatchType, Pattern: r.MatchedPattern}
}

// ReloadStatus summarizes a reload attempt
type ReloadStatus string

const (
	ReloadApplied   ReloadStatus = "applied"
	ReloadUnchanged ReloadStatus = "unchanged"
	ReloadFailed    ReloadStatus = "failed"
)

// ReloadResult reports what a reload did
type ReloadResult struct {
	Status ReloadStatus `json:"status"`
	Meta   RuleSetMeta  `json:"meta"`
}

// Diagnostics receives reload failures
type Diagnostics func(err error)

// Store answers block queries against the live rule set. Queries never block
// on I/O; Reload swaps in a fully parsed rule set or keeps the old one.
type Store struct {
	sources Sources
	rules   atomic.Pointer[ruleSet]
	events  *EventLog

	reloadMu    sync.Mutex
	diagnostics Diagnostics

	logger  *zap.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
}

// NewStore creates a store with an empty rule set. Call Reload to load sources.
func NewStore(sources Sources, eventLogSize int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		sources: sources,
		events:  NewEventLog(eventLogSize),
		logger:  logger,
		now:     time.Now,
	}
	empty := emptyRuleSet()
	empty.meta.LoadedAt = s.now()
	s.rules.Store(empty)
	return s
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// WithDiagnostics sets the collaborator notified of reload failures
func (s *Store) WithDiagnostics(d Diagnostics) *Store {
	s.diagnostics = d
	return s
}

// Sources returns the configured rule file locations
func (s *Store) Sources() Sources {
	return s.sources
}

// IsBlocked checks raw against the live rule set
func (s *Store) IsBlocked(raw string) BlockResult {
	return s.Check(raw, "")
}

// Check is IsBlocked with the requesting mode recorded on any block event.
// Unparsable or host-less URLs are never blocked.
func (s *Store) Check(raw string, mode types.Mode) BlockResult {
	host, ok := utils.HostOf(raw)
	if !ok {
		return BlockResult{}
	}

	rule, allowed := s.rules.Load().match(host, strings.ToLower(raw))
	if allowed != nil {
		return BlockResult{Domain: host, Allowed: allowed}
	}
	if rule.Kind == MatchNone {
		return BlockResult{Domain: host}
	}

	s.events.Append(BlockEvent{
		ID:             id.NewEventID(),
		Timestamp:      s.now(),
		URL:            raw,
		Domain:         host,
		MatchType:      rule.Kind,
		MatchedPattern: rule.Pattern,
		Mode:           mode,
	})
	s.metrics.RecordBlockEvent(rule.Kind.String())

	return BlockResult{
		Blocked:        true,
		MatchType:      rule.Kind,
		MatchedPattern: rule.Pattern,
		Domain:         host,
	}
}

// Reload re-reads the rule files. On failure the previous rule set stays
// live, the error is reported to diagnostics and returned.
func (s *Store) Reload() (ReloadResult, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	bl, al, err := LoadFiles(s.sources)
	if err != nil {
		s.logger.Error("rule reload failed, keeping previous rule set",
			zap.Error(err),
			zap.String("digest", s.rules.Load().meta.Digest),
		)
		s.metrics.RecordReload(string(ReloadFailed))
		if s.diagnostics != nil {
			s.diagnostics(err)
		}
		return ReloadResult{Status: ReloadFailed, Meta: s.Meta()}, err
	}

	return s.apply(bl, al), nil
}

// Apply replaces the rule set with already-decoded documents
func (s *Store) Apply(bl BlocklistFile, al AllowlistFile) ReloadResult {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	return s.apply(bl, al)
}

// apply must be called with reloadMu held
func (s *Store) apply(bl BlocklistFile, al AllowlistFile) ReloadResult {
	next := buildRuleSet(bl, al)
	next.meta.LoadedAt = s.now()

	current := s.rules.Load()
	if current.meta.Digest == next.meta.Digest {
		s.metrics.RecordReload(string(ReloadUnchanged))
		s.logger.Debug("rule set unchanged", zap.String("digest", next.meta.Digest))
		return ReloadResult{Status: ReloadUnchanged, Meta: current.meta}
	}

	s.rules.Store(next)
	s.metrics.RecordReload(string(ReloadApplied))
	s.metrics.SetRuleCounts(next.meta.Counts())
	s.logger.Info("rule set applied",
		zap.Int("sites", next.meta.Sites),
		zap.Int("keywords", next.meta.Keywords),
		zap.Int("urls", next.meta.URLs),
		zap.Int("allowed", next.meta.Allowed),
		zap.Int("sources", next.meta.SourceCount),
		zap.String("digest", next.meta.Digest),
	)
	return ReloadResult{Status: ReloadApplied, Meta: next.meta}
}

// Meta describes the live rule set
func (s *Store) Meta() RuleSetMeta {
	return s.rules.Load().meta
}

// Events returns recent block events, oldest first
func (s *Store) Events(limit int) []BlockEvent {
	return s.events.Events(limit)
}

// EventLog exposes the underlying event log
func (s *Store) EventLog() *EventLog {
	return s.events
}
