package config

import (
	"fmt"
	"time"

	"github.com/GriffinCanCode/navguard/internal/shared/paths"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Rules     RulesConfig
	Curated   CuratedConfig
	Open      OpenConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8700"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// RulesConfig holds blocklist and allowlist sources.
type RulesConfig struct {
	BlocklistPath string        `envconfig:"BLOCKLIST_PATH" default:"data/blocklist.json"`
	AllowlistPath string        `envconfig:"ALLOWLIST_PATH" default:"data/allowlist.json"`
	Watch         bool          `envconfig:"RULES_WATCH" default:"true"`
	Debounce      time.Duration `envconfig:"RULES_DEBOUNCE" default:"100ms"`
	EventLogSize  int           `envconfig:"EVENT_LOG_SIZE" default:"500"`
}

// CuratedConfig holds the restricted mode's namespace and registry sources.
type CuratedConfig struct {
	Scheme           string   `envconfig:"CURATED_SCHEME" default:"curated"`
	Suffix           string   `envconfig:"CURATED_SUFFIX" default:".curated"`
	HomeAddress      string   `envconfig:"CURATED_HOME" default:"curated://home.curated"`
	CompanionDomains []string `envconfig:"COMPANION_DOMAINS"`
	AssetHosts       []string `envconfig:"ASSET_HOSTS"`
	LocationsPath    string   `envconfig:"LOCATIONS_PATH" default:"data/locations.yaml"`
	LocationsDir     string   `envconfig:"LOCATIONS_DIR" default:"data/locations.d"`
	ManifestURL      string   `envconfig:"LOCATIONS_MANIFEST_URL"`
	SanitizeInline   bool     `envconfig:"SANITIZE_INLINE" default:"false"`
}

// OpenConfig holds the open mode's settings.
type OpenConfig struct {
	HomeAddress string `envconfig:"OPEN_HOME" default:"https://duckduckgo.com/"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.Curated.Scheme == "" {
		return fmt.Errorf("invalid config: CURATED_SCHEME must not be empty")
	}
	switch c.Curated.Scheme {
	case "http", "https", "about", "data", "file", "devtools":
		return fmt.Errorf("invalid config: CURATED_SCHEME %q collides with a built-in scheme", c.Curated.Scheme)
	}
	if c.Rules.EventLogSize <= 0 {
		return fmt.Errorf("invalid config: EVENT_LOG_SIZE must be positive")
	}
	if c.Rules.Debounce < 0 {
		return fmt.Errorf("invalid config: RULES_DEBOUNCE must not be negative")
	}
	return nil
}

// UseDataDir points every policy data file at the default names under dir.
func (c *Config) UseDataDir(dir string) {
	layout := paths.Layout{Root: dir}
	c.Rules.BlocklistPath = layout.Blocklist()
	c.Rules.AllowlistPath = layout.Allowlist()
	c.Curated.LocationsPath = layout.Locations()
	c.Curated.LocationsDir = layout.LocationsDir()
}

// Default returns default configuration.
func Default() *Config {
	layout := paths.Default()
	return &Config{
		Server: ServerConfig{
			Port: "8700",
			Host: "127.0.0.1",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Rules: RulesConfig{
			BlocklistPath: layout.Blocklist(),
			AllowlistPath: layout.Allowlist(),
			Watch:         true,
			Debounce:      100 * time.Millisecond,
			EventLogSize:  500,
		},
		Curated: CuratedConfig{
			Scheme:        "curated",
			Suffix:        ".curated",
			HomeAddress:   "curated://home.curated",
			LocationsPath: layout.Locations(),
			LocationsDir:  layout.LocationsDir(),
		},
		Open: OpenConfig{
			HomeAddress: "https://duckduckgo.com/",
		},
	}
}
