package server

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/navguard/internal/domain/blocklist"
	"github.com/GriffinCanCode/navguard/internal/domain/events"
	"github.com/GriffinCanCode/navguard/internal/domain/mode"
	"github.com/GriffinCanCode/navguard/internal/domain/policy"
	"github.com/GriffinCanCode/navguard/internal/domain/resolver"
	"github.com/GriffinCanCode/navguard/internal/domain/session"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/config"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/logging"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// BuildEngine wires a policy engine from configuration and loads its rule
// files and location registry. Unreadable rule or location sources are
// logged and leave the engine with empty data; they do not fail startup.
func BuildEngine(ctx context.Context, cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) (*policy.Engine, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	norm := resolver.Normalizer{Scheme: cfg.Curated.Scheme, Suffix: cfg.Curated.Suffix}

	modes := mode.NewRegistry(mode.Settings{
		Scheme:      cfg.Curated.Scheme,
		HomeOpen:    cfg.Open.HomeAddress,
		HomeCurated: cfg.Curated.HomeAddress,
	}, mode.NewCompanions(cfg.Curated.CompanionDomains, cfg.Curated.AssetHosts), logger.Component("mode")).WithMetrics(metrics)

	blocks := blocklist.NewStore(blocklist.Sources{
		BlocklistPath: cfg.Rules.BlocklistPath,
		AllowlistPath: cfg.Rules.AllowlistPath,
	}, cfg.Rules.EventLogSize, logger.Component("blocklist")).WithMetrics(metrics)

	res := resolver.New(norm, resolver.NewRegistry(norm), logger.Component("resolver")).WithMetrics(metrics)

	loader := resolver.NewLoader(resolver.Sources{
		Path:        cfg.Curated.LocationsPath,
		Dir:         cfg.Curated.LocationsDir,
		ManifestURL: cfg.Curated.ManifestURL,
	}, cfg.Curated.SanitizeInline, logger.Component("locations"))
	if cfg.Curated.ManifestURL != "" {
		loader.WithManifestClient(resolver.NewManifestClient(
			cfg.Curated.ManifestURL,
			resolver.DefaultManifestSettings(),
			logger.Component("manifest"),
		))
	}

	engine, err := policy.New(policy.Components{
		Modes:     modes,
		Blocklist: blocks,
		Resolver:  res,
		Loader:    loader,
		Sessions:  session.NewCoordinator(modes.HomeAddress, logger.Component("session")).WithMetrics(metrics),
		Bus:       events.NewBus(logger.Component("events")).WithMetrics(metrics),
	}, logger.Component("policy"))
	if err != nil {
		return nil, fmt.Errorf("failed to build policy engine: %w", err)
	}
	engine.WithMetrics(metrics)

	if result, err := engine.ReloadRules(); err != nil {
		logger.Error("Failed to load rule files, starting with an empty rule set", zap.Error(err))
	} else {
		logger.Info("Rule set loaded",
			zap.String("status", string(result.Status)),
			zap.String("digest", result.Meta.Digest),
		)
	}

	if _, err := engine.ReloadLocations(ctx); err != nil {
		logger.Error("Failed to load private locations", zap.Error(err))
	}

	return engine, nil
}
