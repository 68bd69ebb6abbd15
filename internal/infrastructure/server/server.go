package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/navguard/internal/api/http"
	"github.com/GriffinCanCode/navguard/internal/api/middleware"
	"github.com/GriffinCanCode/navguard/internal/api/ws"
	"github.com/GriffinCanCode/navguard/internal/domain/blocklist"
	"github.com/GriffinCanCode/navguard/internal/domain/policy"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/config"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/logging"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/tracing"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	engine   *policy.Engine
	watcher  *blocklist.Watcher
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	registry *prometheus.Registry
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)
	}

	logger.Info("Initializing navguard",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("curated_scheme", cfg.Curated.Scheme),
	)

	// Metrics first, every component reports into them
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	tracer := tracing.New(logger.Component("tracing"))

	engine, err := BuildEngine(ctx, cfg, logger, metrics)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	var watcher *blocklist.Watcher
	if cfg.Rules.Watch {
		watcher, err = blocklist.NewWatcher(engine.Blocklist(), cfg.Rules.Debounce, logger.Component("watcher"))
		if err != nil {
			logger.Warn("Rule file watching disabled", zap.Error(err))
		} else {
			watcher.OnReload(engine.PublishReload)
		}
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(logger.Component("http")))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(engine, metrics, tracer, logger.Component("api"))
	handlers.Register(router)

	wsHandler := ws.NewHandler(engine.Bus(), logger.Component("ws")).WithMetrics(metrics)
	router.GET("/ws", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		engine:   engine,
		watcher:  watcher,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		registry: registry,
	}, nil
}

// Router exposes the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Engine exposes the policy engine
func (s *Server) Engine() *policy.Engine {
	return s.engine
}

// Run serves HTTP and watches rule files until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	go auditEvents(ctx, s.engine.Bus(), s.logger.Component("audit"))

	if s.watcher != nil {
		go func() {
			if err := s.watcher.Run(ctx); err != nil {
				s.logger.Error("Rule watcher stopped", zap.Error(err))
			}
		}()
	}

	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close rule watcher: %w", err))
		}
	}
	s.engine.Close()
	s.engine.Bus().Close()
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
