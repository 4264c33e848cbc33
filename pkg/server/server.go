// Package server exposes the pipeline's HTTP control plane: trigger runs,
// inspect status, and manage the source store's conversion flags.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jurisgraph/jurisgraph"
	"github.com/jurisgraph/jurisgraph/pkg/config"
	"github.com/jurisgraph/jurisgraph/pkg/server/handlers"
	"github.com/jurisgraph/jurisgraph/pkg/types"
	"github.com/jurisgraph/jurisgraph/pkg/watcher"
)

// Server represents the HTTP control-plane server
type Server struct {
	config  *config.Config
	router  *gin.Engine
	client  *jurisgraph.Client
	watcher *watcher.Watcher
	log     *slog.Logger
	server  *http.Server
}

// New creates a new server instance. w may be nil when the watcher is
// disabled.
func New(cfg *config.Config, client *jurisgraph.Client, w *watcher.Watcher, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		config:  cfg,
		client:  client,
		watcher: w,
		log:     log,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.client)
	processHandler := handlers.NewProcessHandler(s.client, s.log)
	documentsHandler := handlers.NewDocumentsHandler(s.client, s.log)
	watcherHandler := handlers.NewWatcherHandler(s.watcher)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/process", processHandler.TriggerRun)
		v1.GET("/status", processHandler.GetStatus)
		v1.GET("/stats", processHandler.GetStats)

		documents := v1.Group("/documents")
		{
			documents.GET("/count", documentsHandler.GetCounts)
			documents.GET("/unconverted", documentsHandler.GetUnconverted)
			documents.POST("/mark-converted", documentsHandler.MarkConverted)
			documents.POST("/reset-converted", documentsHandler.ResetConverted)
		}

		v1.GET("/watcher/status", watcherHandler.GetStatus)
	}

	// Unversioned aliases for operational tooling
	s.router.POST("/process", processHandler.TriggerRun)
	s.router.GET("/status", processHandler.GetStatus)
}

// Start starts the server
func (s *Server) Start() error {
	s.log.Info("starting control-plane server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("stopping control-plane server")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware tags every request context with its origin so telemetry
// can attribute log records.
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), types.ContextKeyRequestSource, "server")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
