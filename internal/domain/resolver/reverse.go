package resolver

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/GriffinCanCode/navguard/internal/shared/utils"
)

type reverseTable map[id.TabID]map[string]string

// ReverseIndex remembers which private address a tab's public URL came
// from, so the address bar can keep showing the private form after the
// rendering engine reports the resolved URL.
//
// Readers load an immutable table; writers copy the affected tab's map and
// swap the table atomically.
type ReverseIndex struct {
	writeMu sync.Mutex
	table   atomic.Pointer[reverseTable]
}

// NewReverseIndex creates an empty index
func NewReverseIndex() *ReverseIndex {
	ri := &ReverseIndex{}
	empty := reverseTable{}
	ri.table.Store(&empty)
	return ri
}

// Record maps resolvedURL back to privateAddr for tab
func (ri *ReverseIndex) Record(tab id.TabID, resolvedURL, privateAddr string) {
	if resolvedURL == "" || privateAddr == "" {
		return
	}
	ri.writeMu.Lock()
	defer ri.writeMu.Unlock()

	old := *ri.table.Load()
	next := make(reverseTable, len(old)+1)
	for k, v := range old {
		next[k] = v
	}

	mappings := make(map[string]string, len(old[tab])+1)
	for k, v := range old[tab] {
		mappings[k] = v
	}
	mappings[resolvedURL] = privateAddr
	next[tab] = mappings

	ri.table.Store(&next)
}

// Lookup returns the private address for url in tab. It tries, in order:
// the exact URL, the URL with its trailing slash toggled, the URL with its
// "www." prefix toggled, and finally any mapping of the tab whose host
// matches ignoring "www.".
func (ri *ReverseIndex) Lookup(tab id.TabID, url string) (string, bool) {
	mappings := (*ri.table.Load())[tab]
	if len(mappings) == 0 || url == "" {
		return "", false
	}

	for _, candidate := range []string{url, utils.ToggleTrailingSlash(url), utils.ToggleWWW(url)} {
		if addr, ok := mappings[candidate]; ok {
			return addr, true
		}
	}

	host, ok := utils.HostOf(url)
	if !ok {
		return "", false
	}
	host = utils.StripWWW(host)

	keys := make([]string, 0, len(mappings))
	for k := range mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if h, ok := utils.HostOf(k); ok && utils.StripWWW(h) == host {
			return mappings[k], true
		}
	}
	return "", false
}

// Forget drops every mapping of tab
func (ri *ReverseIndex) Forget(tab id.TabID) {
	ri.writeMu.Lock()
	defer ri.writeMu.Unlock()

	old := *ri.table.Load()
	if _, ok := old[tab]; !ok {
		return
	}
	next := make(reverseTable, len(old))
	for k, v := range old {
		if k != tab {
			next[k] = v
		}
	}
	ri.table.Store(&next)
}

// Len returns the number of mappings held for tab
func (ri *ReverseIndex) Len(tab id.TabID) int {
	return len((*ri.table.Load())[tab])
}
