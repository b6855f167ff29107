package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/formclip/internal/api/http"
	"github.com/GriffinCanCode/formclip/internal/api/middleware"
	"github.com/GriffinCanCode/formclip/internal/api/ws"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/tracing"
)

// shutdownTimeout bounds how long in-flight requests get on shutdown.
const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	engine  *Engine
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Initializing formclip server",
		zap.String("port", cfg.Server.Port),
		zap.String("matcher_mode", cfg.Matcher.Mode),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	tracer := tracing.New("formclip", logger.Component("tracing"))

	engine, err := NewEngine(ctx, cfg, logger, metrics)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(middleware.CORS(middleware.CORSConfigFor(cfg.Server.AllowOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limit))
	}
	router.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	handlers := api.NewHandlers(
		engine.Registry,
		engine.Clipboard,
		engine.Scraper,
		tracer,
		metrics,
		logger.Component("api"),
	)
	handlers.Routes(router)

	wsHandler := ws.NewHandler(engine.Clipboard, cfg.Server.AllowOrigins, logger.Component("ws"), metrics)
	router.GET("/ws/fill", wsHandler.HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		engine:  engine,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Close releases the engine and flushes spans and logs.
func (s *Server) Close() error {
	err := s.engine.Close()
	if err != nil {
		s.logger.Error("Failed to close engine", zap.Error(err))
	}
	s.tracer.Close()

	// stderr sync errors are expected on some platforms
	_ = s.logger.Sync()
	return err
}
