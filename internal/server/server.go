// Package server wires the HTTP surface: router, CORS, static frontend,
// and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/handler"
)

// Options configure the HTTP server.
type Options struct {
	Port      string
	StaticDir string
}

// Server hosts the classification API and the chat frontend.
type Server struct {
	router *gin.Engine
	opts   Options
	logger *zap.Logger
}

// New builds the router and registers all routes.
func New(apiHandler *handler.Handler, opts Options, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	apiHandler.RegisterRoutes(router)

	if opts.StaticDir != "" {
		router.StaticFile("/", opts.StaticDir+"/index.html")
		router.Static("/static", opts.StaticDir)
	}

	return &Server{
		router: router,
		opts:   opts,
		logger: logger,
	}
}

// Run starts the server and blocks until the context is cancelled
// (SIGINT/SIGTERM), then shuts down gracefully with a 5 second deadline.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.opts.Port),
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info("Server is running", zap.String("port", s.opts.Port))

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("Server exited")
	return nil
}
