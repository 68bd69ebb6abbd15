package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/GriffinCanCode/navguard/internal/shared/codec"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// registryFilePattern selects location documents inside a registry directory
const registryFilePattern = "**/*.{json,yaml,yml,toml,gz,zst}"

// Sources locates location documents. Every field is optional.
type Sources struct {
	Path        string
	Dir         string
	ManifestURL string
}

// Loader assembles the location registry from a file, a directory of files
// and a remote manifest, in that order. A later source overrides an earlier
// one for the same address.
type Loader struct {
	sources        Sources
	manifest       *ManifestClient
	sanitizeInline bool
	text           *bluemonday.Policy
	markup         *bluemonday.Policy
	logger         *zap.Logger
}

// NewLoader creates a loader. When sanitizeInline is set, inline HTML is
// passed through a UGC sanitizer before it is registered.
func NewLoader(sources Sources, sanitizeInline bool, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		sources:        sources,
		sanitizeInline: sanitizeInline,
		text:           bluemonday.StrictPolicy(),
		markup:         bluemonday.UGCPolicy(),
		logger:         logger,
	}
}

// WithManifestClient sets the client used for Sources.ManifestURL
func (l *Loader) WithManifestClient(c *ManifestClient) *Loader {
	l.manifest = c
	return l
}

// Load reads every configured source. Local read or parse failures abort
// the load; a failing manifest is logged and skipped so the local registry
// still loads.
func (l *Loader) Load(ctx context.Context) ([]Location, error) {
	var locs []Location

	if l.sources.Path != "" {
		var doc LocationFile
		if _, err := codec.LoadFile(l.sources.Path, &doc); err != nil {
			return nil, fmt.Errorf("failed to load locations: %w", err)
		}
		locs = append(locs, doc.Locations...)
	}

	if l.sources.Dir != "" {
		fromDir, err := l.loadDir(ctx, l.sources.Dir)
		if err != nil {
			return nil, err
		}
		locs = append(locs, fromDir...)
	}

	if l.sources.ManifestURL != "" && l.manifest != nil {
		remote, err := l.manifest.Fetch(ctx)
		if err != nil {
			l.logger.Warn("location manifest unavailable, using local registry only",
				zap.String("url", l.sources.ManifestURL),
				zap.Error(err),
			)
		} else {
			locs = append(locs, remote...)
		}
	}

	for i := range locs {
		locs[i] = l.sanitize(locs[i])
	}
	return locs, nil
}

// LoadInto loads every source and replaces reg's contents on success
func (l *Loader) LoadInto(ctx context.Context, reg *Registry) (ReplaceResult, error) {
	locs, err := l.Load(ctx)
	if err != nil {
		return ReplaceResult{}, err
	}
	result := reg.Replace(locs)
	l.logger.Info("location registry loaded",
		zap.Int("locations", result.Registered),
		zap.Int("keys", result.Keys),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (l *Loader) loadDir(ctx context.Context, dir string) ([]Location, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(registryFilePattern, filepath.ToSlash(rel)); !ok {
			return nil
		}
		mu.Lock()
		files = append(files, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	// fastwalk visits in parallel; sort so overrides are deterministic
	sort.Strings(files)

	var locs []Location
	for _, f := range files {
		if _, _, err := codec.Detect(f); err != nil {
			l.logger.Debug("skipping unrecognized location file", zap.String("path", f))
			continue
		}
		var doc LocationFile
		if _, err := codec.LoadFile(f, &doc); err != nil {
			return nil, fmt.Errorf("failed to load locations: %w", err)
		}
		locs = append(locs, doc.Locations...)
	}
	return locs, nil
}

func (l *Loader) sanitize(loc Location) Location {
	loc.Name = l.text.Sanitize(loc.Name)
	loc.Description = l.text.Sanitize(loc.Description)
	if l.sanitizeInline && loc.InlineContent != "" {
		loc.InlineContent = l.markup.Sanitize(loc.InlineContent)
	}
	return loc
}
