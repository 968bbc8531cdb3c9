package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/pkg/core/services"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

// Server exposes the transport services over JSON HTTP
type Server struct {
	store  db.Gateway
	logger *zap.Logger
	opts   services.Options
	engine *gin.Engine
}

// NewServer builds the gin engine and registers every route
func NewServer(store db.Gateway, logger *zap.Logger, opts services.Options) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		store:  store,
		logger: logger,
		opts:   opts,
		engine: engine,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	routes := s.engine.Group("/routes")
	routes.GET("", s.listRoutes)
	routes.POST("", s.createRoute)
	routes.PUT("/:id", s.updateRoute)
	routes.DELETE("/:id", s.deleteRoute)
	routes.GET("/:id/passengers", s.effectivePassengers)
	routes.GET("/:id/service-dates", s.serviceDates)
	routes.POST("/:id/riders/:riderId", s.assignRider)
	routes.DELETE("/:id/riders/:riderId", s.unassignRider)
	routes.POST("/:id/reservations", s.reserve)

	riders := s.engine.Group("/riders/:riderId")
	riders.GET("/matches", s.findRoutes)
	riders.POST("/auto-assign", s.autoAssign)
	riders.POST("/sync", s.syncRider)
	riders.DELETE("/routes", s.removeRider)

	s.engine.GET("/manifest/:date", s.manifest)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// requestLogger logs each request once it completes
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("Request failed", append(fields, zap.Strings("errors", c.Errors.Errors()))...)
			return
		}
		logger.Debug("Request handled", fields...)
	}
}
