package mode

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/GriffinCanCode/navguard/internal/shared/utils"
	"go.uber.org/zap"
)

// Scope names a top-level session scope (a browser window)
type Scope string

// DefaultScope is used when the host runs a single window
const DefaultScope Scope = "default"

// Listener observes committed mode changes. It runs on the switching goroutine
// and must not call SwitchMode.
type Listener func(scope Scope, mode, previous types.Mode)

// Settings configures a Registry
type Settings struct {
	// Scheme is the private namespace scheme, without "://"
	Scheme      string
	HomeOpen    string
	HomeCurated string
	// Initial is the mode of a scope that never switched
	Initial types.Mode
}

// Registry holds the current mode per scope and the per-mode URL allowlist
type Registry struct {
	settings   Settings
	companions atomic.Pointer[Companions]

	switchMu sync.Mutex // Serializes SwitchMode including listener dispatch

	mu        sync.RWMutex
	modes     map[Scope]types.Mode // Protected by mu
	listeners map[int]Listener     // Protected by mu
	nextID    int                  // Protected by mu

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewRegistry creates a mode registry
func NewRegistry(settings Settings, companions *Companions, logger *zap.Logger) *Registry {
	if !settings.Initial.Valid() {
		settings.Initial = types.ModeOpen
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if companions == nil {
		companions = NewCompanions(nil, nil)
	}

	r := &Registry{
		settings:  settings,
		modes:     make(map[Scope]types.Mode),
		listeners: make(map[int]Listener),
		logger:    logger,
	}
	r.companions.Store(companions)
	return r
}

// WithMetrics adds metrics tracking to the registry
func (r *Registry) WithMetrics(metrics *monitoring.Metrics) *Registry {
	r.metrics = metrics
	return r
}

// Scheme returns the private namespace scheme
func (r *Registry) Scheme() string {
	return r.settings.Scheme
}

// Companions returns the current companion set
func (r *Registry) Companions() *Companions {
	return r.companions.Load()
}

// SetCompanions replaces the companion set
func (r *Registry) SetCompanions(c *Companions) {
	if c == nil {
		c = NewCompanions(nil, nil)
	}
	r.companions.Store(c)
}

// CurrentMode returns the mode of scope
func (r *Registry) CurrentMode(scope Scope) types.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.modes[scope]; ok {
		return m
	}
	return r.settings.Initial
}

// SwitchMode commits a mode change and notifies every listener before
// returning. It returns false when scope is already in mode or mode is unknown.
func (r *Registry) SwitchMode(scope Scope, mode types.Mode) bool {
	if !mode.Valid() {
		return false
	}

	r.switchMu.Lock()
	defer r.switchMu.Unlock()

	r.mu.Lock()
	previous, ok := r.modes[scope]
	if !ok {
		previous = r.settings.Initial
	}
	if previous == mode {
		r.mu.Unlock()
		return false
	}
	r.modes[scope] = mode
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	r.logger.Info("mode switched",
		zap.String("scope", string(scope)),
		zap.String("mode", mode.String()),
		zap.String("previous", previous.String()),
	)
	r.metrics.IncModeSwitches(mode.String())

	for _, l := range listeners {
		r.notify(l, scope, mode, previous)
	}
	return true
}

// Subscribe registers a listener and returns a function that removes it
func (r *Registry) Subscribe(l Listener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// snapshotListeners must be called with mu held
func (r *Registry) snapshotListeners() []Listener {
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.listeners[id])
	}
	return out
}

func (r *Registry) notify(l Listener, scope Scope, mode, previous types.Mode) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("mode listener panicked",
				zap.String("scope", string(scope)),
				zap.String("mode", mode.String()),
				zap.String("panic", fmt.Sprint(rec)),
			)
		}
	}()
	l(scope, mode, previous)
}

// IsCustomScheme reports whether raw is addressed in the private namespace
func (r *Registry) IsCustomScheme(raw string) bool {
	return r.settings.Scheme != "" && utils.Scheme(raw) == r.settings.Scheme
}

// IsURLValidForMode applies the fixed per-mode scheme allowlist.
// Curated accepts the private scheme, internal schemes and companion-approved
// public URLs; Open accepts http, https and internal schemes.
func (r *Registry) IsURLValidForMode(raw string, mode types.Mode) bool {
	if utils.IsInternalScheme(raw) {
		return true
	}
	switch mode {
	case types.ModeCurated:
		if r.IsCustomScheme(raw) {
			return true
		}
		c := r.Companions()
		if host, ok := utils.HostOf(raw); ok && c.IsCompanion(host) {
			return true
		}
		return c.underAssetHost(raw)
	case types.ModeOpen:
		return utils.IsWebScheme(raw)
	default:
		return false
	}
}

// HomeAddress returns the address a fresh tab of mode starts at
func (r *Registry) HomeAddress(mode types.Mode) string {
	if mode == types.ModeCurated {
		return r.settings.HomeCurated
	}
	return r.settings.HomeOpen
}
