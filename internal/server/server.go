// Package server exposes the symdiff tools over HTTP.
//
//	POST /tool    execute a tool call
//	GET  /schema  tool schema for agent registration
//	GET  /health  liveness check
//	GET  /metrics Prometheus metrics
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	srv     *http.Server
	engine  *symdiff.Engine
	logger  *zap.Logger
	metrics *Metrics
	timeout time.Duration
}

// New builds a server for cfg. The engine answers every tool call.
func New(cfg *config.Config, engine *symdiff.Engine, logger *zap.Logger) *Server {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:  gin.New(),
		engine:  engine,
		logger:  logger,
		metrics: NewMetrics(),
		timeout: cfg.Server.ToolTimeout,
	}

	s.router.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.Error("panic in handler",
			zap.Any("panic", rec),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	s.router.Use(RequestID())
	s.router.Use(metricsMiddleware(s.metrics))
	s.router.Use(Logger(logger))
	if len(cfg.Server.AllowOrigins) > 0 {
		s.router.Use(CORS(cfg.Server.AllowOrigins))
	}

	tool := []gin.HandlerFunc{s.handleTool}
	if cfg.Server.RateLimit > 0 {
		tool = append([]gin.HandlerFunc{RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst)}, tool...)
	}
	s.router.POST("/tool", tool...)
	s.router.GET("/schema", s.handleSchema)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.srv.Shutdown(ctx)
}
