// Package http provides the HTTP adapter for the application layer. It is a
// thin translation layer: requests become service calls, service errors
// become status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citimr/aid-portal/internal/application/port"
	"github.com/citimr/aid-portal/internal/application/service"
	"github.com/citimr/aid-portal/internal/auth"
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

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	issuer     *auth.TokenIssuer
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	authService service.AuthService,
	requestService service.RequestService,
	reviewService service.ReviewService,
	accountabilityService service.AccountabilityService,
	fileStore port.FileStore,
	issuer *auth.TokenIssuer,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(authService, requestService, reviewService, accountabilityService, fileStore, logger),
		issuer:   issuer,
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
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api")

	// Public authentication endpoints
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.handlers.Register)
		authGroup.POST("/login", s.handlers.Login)
		authGroup.POST("/admin", s.handlers.AdminAccess)
		authGroup.POST("/reset", s.handlers.RequestPasswordReset)
	}

	// Authenticated endpoints
	authed := api.Group("")
	authed.Use(authMiddleware(s.issuer))
	{
		authed.POST("/uploads", s.handlers.Upload)

		authed.POST("/requests", s.handlers.CreateRequest)
		authed.GET("/requests", s.handlers.ListRequests)
		authed.GET("/requests/:id", s.handlers.GetRequest)
		authed.POST("/requests/:id/accountability", s.handlers.SubmitAccountability)

		// Review and deletion endpoints require the administrator role
		admin := authed.Group("")
		admin.Use(requireAdmin())
		{
			admin.DELETE("/requests/:id", s.handlers.DeleteRequest)
			admin.POST("/requests/:id/approve", s.handlers.ApproveRequest)
			admin.POST("/requests/:id/reject", s.handlers.RejectRequest)
			admin.POST("/requests/:id/accountability/approve", s.handlers.ApproveAccountability)
			admin.POST("/requests/:id/payment", s.handlers.ConfirmPayment)
		}
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
