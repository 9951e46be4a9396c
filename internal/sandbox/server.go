// Package sandbox is an in-memory implementation of the XTeam backend API
// for offline use and integration tests. Audits are scored by a background
// worker after a configurable processing delay.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xteampro/funnel/internal/worker"
	"go.uber.org/zap"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config holds sandbox configuration
type Config struct {
	Server          ServerConfig
	ProcessingDelay time.Duration
	ScoreInterval   time.Duration
	Username        string
	Password        string
}

// DefaultConfig returns a sandbox listening on localhost:8000
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		ProcessingDelay: 8 * time.Second,
		ScoreInterval:   500 * time.Millisecond,
		Username:        "admin",
		Password:        "admin",
	}
}

// Sandbox bundles the backend state, its HTTP server and the scorer
type Sandbox struct {
	State  *State
	Server *Server
	Scorer *Scorer
}

// New wires a sandbox from cfg
func New(cfg Config, logger *zap.Logger) *Sandbox {
	state := NewState(cfg.ProcessingDelay)
	handlers := NewHandlers(state, cfg.Username, cfg.Password, logger)
	return &Sandbox{
		State:  state,
		Server: NewServer(cfg.Server, handlers, logger),
		Scorer: NewScorer(state, cfg.ScoreInterval, logger),
	}
}

// Workers returns the sandbox's background workers in start order
func (s *Sandbox) Workers() []worker.Worker {
	return []worker.Worker{s.Scorer, s.Server}
}

// Server is the sandbox HTTP server
type Server struct {
	config   ServerConfig
	router   *gin.Engine
	handlers *Handlers
	logger   *zap.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	stopOnce   sync.Once
	stopped    chan struct{}
	served     chan struct{}
}

// NewServer creates the HTTP server and its routes
func NewServer(config ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:   config,
		router:   gin.New(),
		handlers: handlers,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Debug("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetHeader("X-Request-ID")))
	}
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api")
	{
		audit := api.Group("/audit")
		audit.POST("/submit", h.SubmitAudit)
		audit.GET("/status/:id", h.AuditStatus)
		audit.GET("/results/:id", h.AuditResults)
		audit.GET("/download/:id", h.DownloadReport)

		api.POST("/contact/contact-submit", h.SubmitContact)
		api.POST("/calculator/roi", h.CalculateROI)

		api.POST("/admin/login", h.Login)
		adm := api.Group("/admin", h.RequireToken())
		adm.GET("/dashboard", h.Dashboard)
		adm.GET("/audits", h.ListAudits)
		adm.GET("/contacts", h.ListContacts)
		adm.GET("/configuration", h.GetConfiguration)
		adm.PUT("/configuration", h.UpdateConfiguration)
		adm.DELETE("/submissions/:id", h.DeleteSubmission)
		adm.GET("/export", h.Export)
	}
}

// Name implements worker.Worker
func (s *Server) Name() string {
	return "sandbox-http"
}

// Start binds the listener and serves in the background. The server shuts
// down when ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return fmt.Errorf("%s already started", s.Name())
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.httpServer = srv
	s.listener = ln
	s.stopped = make(chan struct{})
	s.served = make(chan struct{})

	s.logger.Info("Starting sandbox server", zap.String("address", ln.Addr().String()))

	go func(served chan struct{}) {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Sandbox server error", zap.Error(err))
		}
	}(s.served)
	go func(stopped chan struct{}) {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopped:
		}
	}(s.stopped)
	return nil
}

// Stop gracefully stops the HTTP server and waits for it to finish serving
func (s *Server) Stop() {
	s.mu.Lock()
	srv, stopped, served := s.httpServer, s.stopped, s.served
	s.mu.Unlock()
	if srv == nil {
		return
	}

	s.stopOnce.Do(func() {
		close(stopped)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("Sandbox server shutdown error", zap.Error(err))
		}
		s.logger.Debug("Sandbox server stopped")
	})
	<-served
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the bound address, or the configured one before Start
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
