package resolver

import (
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/navguard/internal/shared/utils"
	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
)

// entry is a registered location with its inline content pre-analyzed
type entry struct {
	loc   Location
	mime  string
	title string
}

type index struct {
	byKey     map[string]*entry
	locations []Location
	loadedAt  time.Time
}

// Registry indexes locations under both their public and internal
// addresses. The index is rebuilt on Replace and swapped atomically.
type Registry struct {
	norm    Normalizer
	current atomic.Pointer[index]
}

// ReplaceResult reports what Replace registered
type ReplaceResult struct {
	Registered int      `json:"registered"`
	Keys       int      `json:"keys"`
	Skipped    []string `json:"skipped,omitempty"`
}

// NewRegistry creates an empty registry
func NewRegistry(norm Normalizer) *Registry {
	r := &Registry{norm: norm}
	r.current.Store(&index{byKey: map[string]*entry{}})
	return r
}

// Replace swaps in a new set of locations. Later locations win over earlier
// ones registered under the same key. Locations without a public address
// are skipped.
func (r *Registry) Replace(locs []Location) ReplaceResult {
	next := &index{
		byKey:    make(map[string]*entry, len(locs)*2),
		loadedAt: time.Now(),
	}
	var result ReplaceResult
	byPublic := make(map[string]Location, len(locs))

	for _, loc := range locs {
		public := r.norm.Normalize(loc.PublicAddress).Host
		if public == "" {
			result.Skipped = append(result.Skipped, loc.Name)
			continue
		}
		e := analyze(loc)
		next.byKey[public] = e
		if loc.InternalAddress != "" {
			if internal := r.norm.Normalize(loc.InternalAddress).Host; internal != "" {
				next.byKey[internal] = e
			}
		}
		byPublic[public] = loc
	}
	for _, loc := range byPublic {
		next.locations = append(next.locations, loc)
	}
	result.Registered = len(next.locations)
	sort.SliceStable(next.locations, func(i, j int) bool {
		return next.locations[i].PublicAddress < next.locations[j].PublicAddress
	})
	result.Keys = len(next.byKey)

	r.current.Store(next)
	return result
}

// Lookup finds the location registered under host, case-insensitively
func (r *Registry) Lookup(host string) (Location, bool) {
	e, ok := r.lookup(host)
	if !ok {
		return Location{}, false
	}
	return e.loc, true
}

func (r *Registry) lookup(host string) (*entry, bool) {
	e, ok := r.current.Load().byKey[strings.ToLower(host)]
	return e, ok
}

// Locations returns the registered locations ordered by public address
func (r *Registry) Locations() []Location {
	locs := r.current.Load().locations
	out := make([]Location, len(locs))
	copy(out, locs)
	return out
}

// Len returns the number of registered locations
func (r *Registry) Len() int {
	return len(r.current.Load().locations)
}

// RemoteHosts returns the hosts of every hosted location served over http(s)
func (r *Registry) RemoteHosts() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, loc := range r.current.Load().locations {
		if !loc.IsHosted() || !utils.IsWebScheme(loc.RemoteURL) {
			continue
		}
		if h, ok := utils.HostOf(loc.RemoteURL); ok {
			if _, dup := seen[h]; !dup {
				seen[h] = struct{}{}
				out = append(out, h)
			}
		}
	}
	sort.Strings(out)
	return out
}

func analyze(loc Location) *entry {
	e := &entry{loc: loc}
	if strings.TrimSpace(loc.InlineContent) == "" {
		return e
	}

	mt := mimetype.Detect([]byte(loc.InlineContent))
	e.mime = mt.String()
	if mt.Is("text/html") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(loc.InlineContent)); err == nil {
			e.title = strings.TrimSpace(doc.Find("title").First().Text())
		}
	}
	if e.title == "" {
		e.title = loc.Name
	}
	return e
}
