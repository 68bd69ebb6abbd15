package resolver

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/GriffinCanCode/navguard/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/navguard/internal/shared/codec"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ManifestSettings tunes the remote manifest client
type ManifestSettings struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Breaker      resilience.Settings
}

// DefaultManifestSettings returns settings suited to a startup or reload fetch
func DefaultManifestSettings() ManifestSettings {
	return ManifestSettings{
		Timeout:      15 * time.Second,
		RetryMax:     2,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		Breaker:      resilience.DefaultSettings(),
	}
}

// ManifestClient fetches a remote location registry document
type ManifestClient struct {
	url     string
	http    *resty.Client
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// NewManifestClient creates a client for manifestURL. Transient failures are
// retried by the transport; repeated failures open the circuit breaker.
func NewManifestClient(manifestURL string, settings ManifestSettings, logger *zap.Logger) *ManifestClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = settings.RetryMax
	retryClient.RetryWaitMin = settings.RetryWaitMin
	retryClient.RetryWaitMax = settings.RetryWaitMax
	retryClient.Logger = retryLogger{logger.Sugar()}

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(settings.Timeout).
		SetHeader("User-Agent", "navguard-manifest/1.0").
		SetHeader("Accept", "application/json, application/yaml, application/toml")

	breakerSettings := settings.Breaker
	breakerSettings.OnStateChange = func(name string, from, to resilience.State) {
		logger.Warn("circuit breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	return &ManifestClient{
		url:     manifestURL,
		http:    restyClient,
		breaker: resilience.New("locations-manifest", breakerSettings),
		logger:  logger,
	}
}

// Breaker exposes the client's circuit breaker
func (c *ManifestClient) Breaker() *resilience.Breaker {
	return c.breaker
}

// Fetch downloads and decodes the manifest
func (c *ManifestClient) Fetch(ctx context.Context) ([]Location, error) {
	body, err := resilience.Call(ctx, c.breaker, func(ctx context.Context) ([]byte, error) {
		resp, err := c.http.R().SetContext(ctx).Get(c.url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch manifest: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("manifest request failed: %s", resp.Status())
		}
		return resp.Body(), nil
	})
	if err != nil {
		return nil, err
	}

	format, comp := manifestFormat(c.url)
	data, err := codec.Decompress(comp, body)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress manifest: %w", err)
	}
	if codec.IsBlank(data) {
		return nil, nil
	}

	var doc LocationFile
	if err := codec.Decode(format, data, &doc); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	c.logger.Debug("manifest fetched", zap.String("url", c.url), zap.Int("locations", len(doc.Locations)))
	return doc.Locations, nil
}

// manifestFormat infers the document format from the URL path, defaulting to JSON
func manifestFormat(rawURL string) (codec.Format, codec.Compression) {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	format, comp, err := codec.Detect(path)
	if err != nil {
		return codec.FormatJSON, comp
	}
	return format, comp
}

// retryLogger adapts zap to retryablehttp.LeveledLogger
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
