package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/GriffinCanCode/navguard/internal/domain/blocklist"
	"github.com/GriffinCanCode/navguard/internal/domain/policy"
	"github.com/GriffinCanCode/navguard/internal/domain/session"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/tracing"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint
const Version = "0.3.0"

// Handlers contains all HTTP handlers of the control API
type Handlers struct {
	engine  *policy.Engine
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	logger  *zap.Logger
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(engine *policy.Engine, metrics *monitoring.Metrics, tracer *tracing.Tracer, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		engine:  engine,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
		started: time.Now(),
	}
}

// Register mounts every route on router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/health", h.Health)

	v1 := router.Group("/v1")
	v1.POST("/requests/evaluate", h.Evaluate)

	v1.POST("/tabs", h.CreateTab)
	v1.GET("/tabs", h.ListTabs)
	v1.DELETE("/tabs/:id", h.CloseTab)
	v1.POST("/tabs/:id/navigate", h.Navigate)
	v1.POST("/tabs/:id/commit", h.Commit)
	v1.GET("/tabs/:id/display", h.Display)
	v1.POST("/tabs/:id/mode", h.ToggleMode)

	v1.GET("/mode", h.Mode)
	v1.GET("/resolve", h.Resolve)
	v1.POST("/locations/reload", h.ReloadLocations)

	v1.GET("/blocklist", h.RuleSet)
	v1.GET("/blocklist/events", h.BlockEvents)
	v1.POST("/blocklist/reload", h.ReloadRules)
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	meta := h.engine.Blocklist().Meta()
	counts := h.engine.Sessions().Counts()

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        "navguard",
		"version":        Version,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"rules": gin.H{
			"digest":    meta.Digest,
			"loaded_at": meta.LoadedAt,
			"counts":    meta.Counts(),
		},
		"locations":   h.engine.Resolver().Registry().Len(),
		"tabs":        counts,
		"subscribers": h.engine.Bus().Subscribers(),
		"metrics":     h.metrics.Snapshot(),
	})
}

// span opens a child span for an engine operation. The returned func
// finishes and submits it.
func (h *Handlers) span(c *gin.Context, op string) func() {
	if h.tracer == nil {
		return func() {}
	}
	span, ctx := h.tracer.StartSpan(c.Request.Context(), op)
	c.Request = c.Request.WithContext(ctx)
	return func() {
		span.Finish()
		h.tracer.Submit(span)
	}
}

// fail maps domain errors onto HTTP status codes
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrTabNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrInvalidMode), errors.Is(err, policy.ErrUnknownPartition):
		status = http.StatusBadRequest
	case errors.Is(err, policy.ErrNoLocationLoader):
		status = http.StatusNotImplemented
	case errors.Is(err, blocklist.ErrRuleFileCorrupt):
		status = http.StatusUnprocessableEntity
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			append(tracing.Fields(c.Request.Context()), zap.Error(err))...)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
