package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"go.uber.org/zap"
)

var (
	ErrTabNotFound = errors.New("tab not found")
	ErrInvalidMode = errors.New("invalid mode")
)

// Tab is a logical browser tab. Its ID, mode and partition never change.
type Tab struct {
	ID          id.TabID          `json:"id"`
	Mode        types.Mode        `json:"mode"`
	PartitionID types.PartitionID `json:"partition_id"`
	CurrentURL  string            `json:"current_url"`
	DisplayURL  string            `json:"display_url"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`

	activatedSeq uint64
}

// HomeFunc returns the address a fresh tab of a mode opens at
type HomeFunc func(types.Mode) string

// Coordinator owns the tab → partition → mode mapping. Exactly one
// partition exists per mode and is shared by every tab of that mode.
type Coordinator struct {
	partitions map[types.Mode]types.Partition
	home       HomeFunc

	mu       sync.RWMutex
	tabs     map[id.TabID]*Tab // Protected by mu
	activeID id.TabID          // Protected by mu
	seq      uint64            // Protected by mu
	onClose  []func(id.TabID)  // Protected by mu

	logger  *zap.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
}

// NewCoordinator creates a coordinator with one partition per mode
func NewCoordinator(home HomeFunc, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if home == nil {
		home = func(types.Mode) string { return "about:blank" }
	}
	partitions := make(map[types.Mode]types.Partition, len(types.Modes))
	for _, m := range types.Modes {
		partitions[m] = types.PartitionFor(m)
	}
	return &Coordinator{
		partitions: partitions,
		home:       home,
		tabs:       make(map[id.TabID]*Tab),
		logger:     logger,
		now:        time.Now,
	}
}

// WithMetrics adds metrics tracking to the coordinator
func (c *Coordinator) WithMetrics(metrics *monitoring.Metrics) *Coordinator {
	c.metrics = metrics
	return c
}

// OnClose registers fn to run after a tab is closed
func (c *Coordinator) OnClose(fn func(id.TabID)) {
	c.mu.Lock()
	c.onClose = append(c.onClose, fn)
	c.mu.Unlock()
}

// Partition returns the shared partition of mode
func (c *Coordinator) Partition(m types.Mode) (types.Partition, bool) {
	p, ok := c.partitions[m]
	return p, ok
}

// CreateTab opens and activates a tab bound to mode's partition
func (c *Coordinator) CreateTab(m types.Mode) (Tab, error) {
	if !m.Valid() {
		return Tab{}, fmt.Errorf("%w: %q", ErrInvalidMode, m)
	}

	c.mu.Lock()
	tab := c.createLocked(m)
	c.mu.Unlock()

	c.logger.Info("tab created",
		zap.String("tab_id", string(tab.ID)),
		zap.String("mode", m.String()),
	)
	c.reportTabs()
	return tab, nil
}

// createLocked must be called with mu held
func (c *Coordinator) createLocked(m types.Mode) Tab {
	home := c.home(m)
	tab := &Tab{
		ID:          id.NewTabID(),
		Mode:        m,
		PartitionID: c.partitions[m].ID,
		CurrentURL:  home,
		DisplayURL:  home,
		CreatedAt:   c.now(),
	}
	c.tabs[tab.ID] = tab
	c.activateLocked(tab)
	return *tab
}

// activateLocked must be called with mu held
func (c *Coordinator) activateLocked(tab *Tab) {
	if prev, ok := c.tabs[c.activeID]; ok {
		prev.Active = false
	}
	c.seq++
	tab.Active = true
	tab.activatedSeq = c.seq
	c.activeID = tab.ID
}

// CloseTab closes a tab. It returns false if the tab does not exist.
func (c *Coordinator) CloseTab(tabID id.TabID) bool {
	c.mu.Lock()
	if _, ok := c.tabs[tabID]; !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.tabs, tabID)
	if c.activeID == tabID {
		c.activeID = ""
	}
	hooks := append([]func(id.TabID){}, c.onClose...)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(tabID)
	}
	c.logger.Info("tab closed", zap.String("tab_id", string(tabID)))
	c.reportTabs()
	return true
}

// SwitchMode moves the user from tabID to a tab of mode m. The tab itself is
// never rebound: the most recently active tab of m is reused, or a new one
// is created at m's home address. The old tab stays open and dormant.
func (c *Coordinator) SwitchMode(tabID id.TabID, m types.Mode) (Tab, error) {
	if !m.Valid() {
		return Tab{}, fmt.Errorf("%w: %q", ErrInvalidMode, m)
	}

	c.mu.Lock()
	current, ok := c.tabs[tabID]
	if !ok {
		c.mu.Unlock()
		return Tab{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	if current.Mode == m {
		c.activateLocked(current)
		tab := *current
		c.mu.Unlock()
		return tab, nil
	}

	var target *Tab
	for _, t := range c.tabs {
		if t.Mode == m && (target == nil || t.activatedSeq > target.activatedSeq) {
			target = t
		}
	}

	created := false
	var tab Tab
	if target != nil {
		c.activateLocked(target)
		tab = *target
	} else {
		tab = c.createLocked(m)
		created = true
	}
	c.mu.Unlock()

	c.logger.Info("tab mode switched",
		zap.String("from_tab", string(tabID)),
		zap.String("to_tab", string(tab.ID)),
		zap.String("mode", m.String()),
		zap.Bool("created", created),
	)
	if created {
		c.reportTabs()
	}
	return tab, nil
}

// Tab returns a copy of a tab
func (c *Coordinator) Tab(tabID id.TabID) (Tab, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tabs[tabID]
	if !ok {
		return Tab{}, false
	}
	return *t, true
}

// Tabs returns every tab ordered by creation
func (c *Coordinator) Tabs() []Tab {
	c.mu.RLock()
	out := make([]Tab, 0, len(c.tabs))
	for _, t := range c.tabs {
		out = append(out, *t)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ActiveTab returns the active tab, if any
func (c *Coordinator) ActiveTab() (Tab, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tabs[c.activeID]
	if !ok {
		return Tab{}, false
	}
	return *t, true
}

// Activate makes tabID the active tab
func (c *Coordinator) Activate(tabID id.TabID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tabs[tabID]
	if !ok {
		return false
	}
	c.activateLocked(t)
	return true
}

// Dispatch returns the partition a request from tabID runs in. The value is
// a snapshot: switching modes later does not affect a dispatched request.
func (c *Coordinator) Dispatch(tabID id.TabID) (types.Partition, error) {
	c.mu.RLock()
	t, ok := c.tabs[tabID]
	c.mu.RUnlock()
	if !ok {
		return types.Partition{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	return c.partitions[t.Mode], nil
}

// Commit records the URL a tab finished navigating to and the form the
// address bar should display
func (c *Coordinator) Commit(tabID id.TabID, currentURL, displayURL string) (Tab, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tabs[tabID]
	if !ok {
		return Tab{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	if displayURL == "" {
		displayURL = currentURL
	}
	t.CurrentURL = currentURL
	t.DisplayURL = displayURL
	return *t, nil
}

// Counts returns the number of tabs per mode
func (c *Coordinator) Counts() map[types.Mode]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[types.Mode]int, len(types.Modes))
	for _, m := range types.Modes {
		counts[m] = 0
	}
	for _, t := range c.tabs {
		counts[t.Mode]++
	}
	return counts
}

func (c *Coordinator) reportTabs() {
	if c.metrics == nil {
		return
	}
	for m, n := range c.Counts() {
		c.metrics.SetTabs(m.String(), n)
	}
}
