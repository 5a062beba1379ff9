// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services bundles the application services exposed over HTTP.
type Services struct {
	Offers        service.OfferService
	Applications  service.ApplicationService
	Internships   service.InternshipService
	Attendance    service.AttendanceService
	Logbook       service.LogbookService
	Evaluations   service.EvaluationService
	Notifications service.NotificationService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		// Offers
		api.POST("/offers", handlers.CreateOffer)
		api.GET("/offers", handlers.ListOffers)
		api.GET("/offers/:id", handlers.GetOffer)
		api.PATCH("/offers/:id/status", handlers.SetOfferStatus)
		api.DELETE("/offers/:id", handlers.DeleteOffer)

		// Applications
		api.POST("/applications", handlers.CreateApplication)
		api.GET("/applications/:id", handlers.GetApplication)
		api.GET("/applications/:id/history", handlers.GetApplicationHistory)
		api.PATCH("/applications/:id/status", handlers.SetApplicationStatus)
		api.POST("/applications/:id/withdraw", handlers.WithdrawApplication)

		// Internships
		api.GET("/internships/:id", handlers.GetInternship)
		api.POST("/internships/:id/cancel", handlers.CancelInternship)
		api.GET("/internships/:id/attendance", handlers.ListAttendance)
		api.GET("/internships/:id/logbook", handlers.ListLogbook)
		api.GET("/internships/:id/evaluations", handlers.ListEvaluations)

		// Attendance
		api.POST("/attendance", handlers.RecordAttendance)
		api.POST("/attendance/:id/validate", handlers.ValidateAttendance)

		// Logbook
		api.POST("/logbook", handlers.CreateLogbookEntry)
		api.PUT("/logbook/:id", handlers.UpdateLogbookEntry)
		api.DELETE("/logbook/:id", handlers.DeleteLogbookEntry)
		api.POST("/logbook/:id/review", handlers.ReviewLogbookEntry)

		// Evaluations
		api.POST("/evaluations", handlers.CreateEvaluation)
		api.PUT("/evaluations/:id", handlers.AmendEvaluation)

		// Notifications
		api.GET("/notifications", handlers.ListNotifications)
		api.GET("/notifications/unread-count", handlers.CountUnreadNotifications)
		api.POST("/notifications/:id/read", handlers.MarkNotificationRead)
		api.GET("/notifications/preferences", handlers.GetNotificationPreferences)
		api.PUT("/notifications/preferences", handlers.UpdateNotificationPreferences)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
