package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/GriffinCanCode/navguard/internal/domain/blocklist"
	"github.com/GriffinCanCode/navguard/internal/domain/events"
	"github.com/GriffinCanCode/navguard/internal/domain/interceptor"
	"github.com/GriffinCanCode/navguard/internal/domain/mode"
	"github.com/GriffinCanCode/navguard/internal/domain/resolver"
	"github.com/GriffinCanCode/navguard/internal/domain/session"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/GriffinCanCode/navguard/internal/shared/utils"
	"go.uber.org/zap"
)

var (
	ErrUnknownPartition = errors.New("unknown partition")
	ErrNoLocationLoader = errors.New("no location loader configured")
)

// Components are the collaborators an Engine coordinates. Loader may be
// nil when the location registry is populated directly.
type Components struct {
	Modes     *mode.Registry
	Blocklist *blocklist.Store
	Resolver  *resolver.Resolver
	Loader    *resolver.Loader
	Sessions  *session.Coordinator
	Bus       *events.Bus
}

// Engine is the single entry point the host application talks to. It
// dispatches requests to their tab's partition, evaluates them, keeps the
// reverse index for display fidelity and publishes outbound events.
type Engine struct {
	modes       *mode.Registry
	companions  *mode.Companions
	blocks      *blocklist.Store
	resolver    *resolver.Resolver
	loader      *resolver.Loader
	sessions    *session.Coordinator
	bus         *events.Bus
	interceptor *interceptor.Interceptor
	reverse     *resolver.ReverseIndex

	// Decisions within a partition are serialized; partitions run concurrently
	partitionMu map[types.PartitionID]*sync.Mutex

	unsubscribe func()
	logger      *zap.Logger
	metrics     *monitoring.Metrics
}

// New wires an engine from its components
func New(c Components, logger *zap.Logger) (*Engine, error) {
	if c.Modes == nil || c.Blocklist == nil || c.Resolver == nil || c.Sessions == nil {
		return nil, errors.New("policy: modes, blocklist, resolver and sessions are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if c.Bus == nil {
		c.Bus = events.NewBus(logger)
	}

	e := &Engine{
		modes:       c.Modes,
		companions:  c.Modes.Companions(),
		blocks:      c.Blocklist,
		resolver:    c.Resolver,
		loader:      c.Loader,
		sessions:    c.Sessions,
		bus:         c.Bus,
		interceptor: interceptor.New(c.Modes, c.Blocklist, c.Resolver, logger.Named("interceptor")),
		reverse:     resolver.NewReverseIndex(),
		partitionMu: make(map[types.PartitionID]*sync.Mutex, len(types.Modes)),
		logger:      logger,
	}
	for _, m := range types.Modes {
		e.partitionMu[types.PartitionFor(m).ID] = &sync.Mutex{}
	}

	e.unsubscribe = e.modes.Subscribe(e.onModeChanged)
	e.sessions.OnClose(e.reverse.Forget)
	e.refreshCompanions()
	return e, nil
}

// WithMetrics adds metrics tracking to the engine
func (e *Engine) WithMetrics(metrics *monitoring.Metrics) *Engine {
	e.metrics = metrics
	return e
}

// Close detaches the engine from the mode registry
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

func (e *Engine) Modes() *mode.Registry                { return e.modes }
func (e *Engine) Sessions() *session.Coordinator       { return e.sessions }
func (e *Engine) Blocklist() *blocklist.Store          { return e.blocks }
func (e *Engine) Resolver() *resolver.Resolver         { return e.resolver }
func (e *Engine) Bus() *events.Bus                     { return e.bus }
func (e *Engine) ReverseIndex() *resolver.ReverseIndex { return e.reverse }

// OnBeforeRequest decides one request issued into a partition. It is the
// only call the host needs before letting the rendering engine load a URL.
func (e *Engine) OnBeforeRequest(partitionID string, rawURL string, rt types.ResourceType, tabID id.TabID) (interceptor.Decision, error) {
	p, err := types.ParsePartition(partitionID)
	if err != nil {
		return interceptor.Decision{}, fmt.Errorf("%w: %s", ErrUnknownPartition, partitionID)
	}
	return e.decide(interceptor.Request{
		Partition:    p,
		URL:          rawURL,
		ResourceType: rt,
		TabID:        tabID,
	}), nil
}

// EvaluateForTab dispatches a request from tabID into the tab's partition
// and decides it
func (e *Engine) EvaluateForTab(tabID id.TabID, rawURL string, rt types.ResourceType) (interceptor.Decision, error) {
	p, err := e.sessions.Dispatch(tabID)
	if err != nil {
		return interceptor.Decision{}, err
	}
	return e.decide(interceptor.Request{
		Partition:    p,
		URL:          rawURL,
		ResourceType: rt,
		TabID:        tabID,
	}), nil
}

func (e *Engine) decide(req interceptor.Request) interceptor.Decision {
	mu := e.partitionMu[req.Partition.ID]
	mu.Lock()
	timer := monitoring.NewTimer()
	d := e.interceptor.Evaluate(req)
	elapsed := timer.Elapsed()
	mu.Unlock()

	e.metrics.RecordDecision(string(req.Partition.ID), d.Outcome.String(), d.Reason.String(), elapsed)

	switch {
	case d.Outcome == interceptor.OutcomeDeny && d.ResourceType.IsDocument():
		e.bus.Publish(events.NewURLBlocked(events.URLBlocked{
			TabID:        req.TabID,
			URL:          req.URL,
			Reason:       d.Reason.String(),
			Detail:       d.Detail,
			Interstitial: d.Interstitial,
		}))
	case d.Outcome == interceptor.OutcomeResolveThenAllow && req.TabID != "" && utils.IsWebScheme(d.ResolvedURL):
		// Hosted private location: remember the private form for display
		norm := e.resolver.Normalizer()
		e.reverse.Record(req.TabID, d.ResolvedURL, norm.URL(norm.Normalize(req.URL)))
	}
	return d
}

// NavigateResult is the outcome of address-bar input
type NavigateResult struct {
	TabID    id.TabID             `json:"tab_id"`
	Input    string               `json:"input"`
	URL      string               `json:"url"`
	Decision interceptor.Decision `json:"decision"`
}

// Navigate turns typed input into a URL for the tab's mode and decides it
// as a top-level navigation
func (e *Engine) Navigate(tabID id.TabID, input string) (NavigateResult, error) {
	tab, ok := e.sessions.Tab(tabID)
	if !ok {
		return NavigateResult{}, fmt.Errorf("%w: %s", session.ErrTabNotFound, tabID)
	}

	target := e.AddressFor(tab.Mode, input)
	d, err := e.EvaluateForTab(tabID, target, types.ResourceMainFrame)
	if err != nil {
		return NavigateResult{}, err
	}
	return NavigateResult{TabID: tabID, Input: input, URL: target, Decision: d}, nil
}

// AddressFor expands typed input into a navigable URL. Empty input goes
// home. In curated mode bare names become private addresses; anything else
// without a scheme is treated as an https URL.
func (e *Engine) AddressFor(m types.Mode, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return e.modes.HomeAddress(m)
	}

	norm := e.resolver.Normalizer()
	if norm.IsPrivate(input) {
		return norm.URL(norm.Normalize(input))
	}
	if m == types.ModeCurated && norm.LooksLikeShorthand(input) {
		return norm.URL(norm.Normalize(input))
	}
	if strings.Contains(input, "://") || utils.IsInternalScheme(input) {
		return input
	}
	return "https://" + input
}

// OnModeToggleRequested moves the user from tabID to a tab of mode m and
// records m as the current mode. Requests already decided are unaffected.
func (e *Engine) OnModeToggleRequested(tabID id.TabID, m types.Mode) (session.Tab, error) {
	tab, err := e.sessions.SwitchMode(tabID, m)
	if err != nil {
		return session.Tab{}, err
	}
	e.modes.SwitchMode(mode.DefaultScope, m)
	return tab, nil
}

// onModeChanged runs synchronously inside mode.Registry.SwitchMode
func (e *Engine) onModeChanged(scope mode.Scope, m, previous types.Mode) {
	var tabID id.TabID
	if tab, ok := e.sessions.ActiveTab(); ok && tab.Mode == m {
		tabID = tab.ID
	}
	e.bus.Publish(events.NewModeChanged(events.ModeChanged{
		Scope:    string(scope),
		Mode:     m,
		Previous: previous,
		TabID:    tabID,
	}))
}

// OnNavigationCommitted records the URL the rendering engine reports for a
// tab. If the URL came from a private address, the tab displays the private
// form. The updated tab is returned.
func (e *Engine) OnNavigationCommitted(tabID id.TabID, rawURL string) (session.Tab, error) {
	display := rawURL
	if private, ok := e.reverse.Lookup(tabID, rawURL); ok {
		display = private
	}
	return e.sessions.Commit(tabID, rawURL, display)
}

// DisplayURL returns what the address bar should show for a tab
func (e *Engine) DisplayURL(tabID id.TabID) (string, error) {
	tab, ok := e.sessions.Tab(tabID)
	if !ok {
		return "", fmt.Errorf("%w: %s", session.ErrTabNotFound, tabID)
	}
	return tab.DisplayURL, nil
}

// Resolve resolves a private address without deciding a request
func (e *Engine) Resolve(address string) resolver.Resolution {
	return e.resolver.Resolve(address)
}

// ReloadRules re-reads the rule files and publishes the outcome
func (e *Engine) ReloadRules() (blocklist.ReloadResult, error) {
	result, err := e.blocks.Reload()
	e.PublishReload(result, err)
	return result, err
}

// PublishReload announces a rule reload on the bus. The file watcher calls
// it after reloads it triggers.
func (e *Engine) PublishReload(result blocklist.ReloadResult, err error) {
	p := events.RulesReloaded{
		Status: string(result.Status),
		Digest: result.Meta.Digest,
	}
	if err != nil {
		p.Error = err.Error()
	}
	e.bus.Publish(events.NewRulesReloaded(p))
}

// ReloadLocations reloads the private location registry and refreshes the
// curated companion set with the hosts of hosted locations
func (e *Engine) ReloadLocations(ctx context.Context) (resolver.ReplaceResult, error) {
	if e.loader == nil {
		return resolver.ReplaceResult{}, ErrNoLocationLoader
	}
	result, err := e.loader.LoadInto(ctx, e.resolver.Registry())
	if err != nil {
		return resolver.ReplaceResult{}, fmt.Errorf("reload locations: %w", err)
	}
	e.refreshCompanions()
	return result, nil
}

// refreshCompanions lets pages of hosted locations load their own
// sub-resources from curated tabs
func (e *Engine) refreshCompanions() {
	hosts := e.resolver.Registry().RemoteHosts()
	e.modes.SetCompanions(e.companions.With(hosts...))
	if len(hosts) > 0 {
		e.logger.Debug("companion hosts refreshed", zap.Strings("hosts", hosts))
	}
}
