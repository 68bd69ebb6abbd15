package server

import (
	"context"

	"github.com/GriffinCanCode/navguard/internal/domain/events"
	"go.uber.org/zap"
)

// auditEvents writes every outbound event to the log until ctx is done or
// the bus closes
func auditEvents(ctx context.Context, bus *events.Bus, logger *zap.Logger) {
	bus.Listen(ctx, events.DefaultBuffer, func(e events.Event) {
		logEvent(logger, e)
	})
}

func logEvent(logger *zap.Logger, e events.Event) {
	fields := []zap.Field{zap.String("event_id", string(e.ID))}

	switch {
	case e.URLBlocked != nil:
		logger.Info("Navigation blocked", append(fields,
			zap.String("tab_id", string(e.URLBlocked.TabID)),
			zap.String("url", e.URLBlocked.URL),
			zap.String("reason", e.URLBlocked.Reason),
		)...)
	case e.ModeChanged != nil:
		logger.Info("Mode changed", append(fields,
			zap.String("scope", e.ModeChanged.Scope),
			zap.String("mode", string(e.ModeChanged.Mode)),
			zap.String("previous", string(e.ModeChanged.Previous)),
		)...)
	case e.RulesReloaded != nil:
		fields = append(fields,
			zap.String("status", e.RulesReloaded.Status),
			zap.String("digest", e.RulesReloaded.Digest),
		)
		if e.RulesReloaded.Error != "" {
			logger.Warn("Rule reload failed", append(fields, zap.String("error", e.RulesReloaded.Error))...)
			return
		}
		logger.Info("Rules reloaded", fields...)
	}
}
