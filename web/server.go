package web

import (
	"context"
	"net/http"

	"law-agent/config"
	"law-agent/graph"
	"law-agent/web/handlers"
	"law-agent/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
	config *config.Config
}

func NewServer(g *graph.Graph, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router: router,
		logger: logger,
		config: cfg,
	}

	generation := handlers.NewGenerationHandler(g, logger)

	api := router.Group("/api/v1/generation")
	api.Use(middleware.RequireAPIKey(cfg.ServerAPIKey, logger))
	api.GET("/", generation.HealthCheck)
	api.POST("/generate", generation.Generate)
	api.POST("/stream", generation.Stream)

	return server
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
