package resolver

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// ContentType classifies a resolution
type ContentType string

const (
	ContentLocal  ContentType = "local"
	ContentHosted ContentType = "hosted"
	ContentError  ContentType = "error"
)

// Resolution is the outcome of resolving a private address
type Resolution struct {
	Success      bool        `json:"success"`
	ContentType  ContentType `json:"content_type"`
	Content      string      `json:"content,omitempty"`
	MIMEType     string      `json:"mime_type,omitempty"`
	Title        string      `json:"title,omitempty"`
	ResolvedURL  string      `json:"resolved_url,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Address      Address     `json:"address"`
	Location     *Location   `json:"location,omitempty"`

	Err error `json:"-"`
}

func failed(addr Address, err error) Resolution {
	return Resolution{
		ContentType:  ContentError,
		ErrorMessage: err.Error(),
		Address:      addr,
		Err:          err,
	}
}

// Resolver maps private addresses to inline or hosted content. Resolve is
// an in-memory lookup and never performs I/O.
type Resolver struct {
	norm     Normalizer
	registry *Registry
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// New creates a resolver over registry
func New(norm Normalizer, registry *Registry, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewRegistry(norm)
	}
	return &Resolver{norm: norm, registry: registry, logger: logger}
}

// WithMetrics adds metrics tracking to the resolver
func (r *Resolver) WithMetrics(metrics *monitoring.Metrics) *Resolver {
	r.metrics = metrics
	return r
}

// Normalizer returns the namespace normalizer
func (r *Resolver) Normalizer() Normalizer {
	return r.norm
}

// Registry returns the location registry
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve looks up address. Hosted results carry a public URL which the
// caller must run through the full request policy before loading.
func (r *Resolver) Resolve(address string) Resolution {
	res := r.resolve(address)
	r.metrics.RecordResolution(string(res.ContentType))
	if !res.Success {
		r.logger.Debug("resolution failed",
			zap.String("address", address),
			zap.String("host", res.Address.Host),
			zap.Error(res.Err),
		)
	}
	return res
}

func (r *Resolver) resolve(address string) Resolution {
	addr := r.norm.Normalize(address)
	if addr.Host == "" {
		return failed(addr, ErrEmptyHost)
	}

	e, ok := r.registry.lookup(addr.Host)
	if !ok {
		return failed(addr, fmt.Errorf("%w: %s", ErrUnregistered, addr.Host))
	}
	loc := e.loc
	if err := loc.Validate(); err != nil {
		return failed(addr, fmt.Errorf("%s: %w", addr.Host, err))
	}

	if !loc.IsHosted() {
		return Resolution{
			Success:     true,
			ContentType: ContentLocal,
			Content:     loc.InlineContent,
			MIMEType:    e.mime,
			Title:       e.title,
			ResolvedURL: r.norm.URL(addr),
			Address:     addr,
			Location:    &loc,
		}
	}

	resolved, err := joinRemote(loc.RemoteURL, addr)
	if err != nil {
		return failed(addr, fmt.Errorf("%s: invalid remote url: %w", addr.Host, err))
	}
	return Resolution{
		Success:     true,
		ContentType: ContentHosted,
		Title:       loc.Name,
		ResolvedURL: resolved,
		Address:     addr,
		Location:    &loc,
	}
}

// joinRemote carries the private address's path and query onto the remote URL
func joinRemote(remote string, addr Address) (string, error) {
	u, err := url.Parse(strings.TrimSpace(remote))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%q is not absolute", remote)
	}

	if addr.Path != "" && addr.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/") + addr.Path
		u.RawPath = ""
	}
	if addr.Query != "" {
		if u.RawQuery == "" {
			u.RawQuery = addr.Query
		} else {
			u.RawQuery += "&" + addr.Query
		}
	}
	return u.String(), nil
}
