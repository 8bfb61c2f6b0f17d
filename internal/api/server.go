package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"expansion-monitor/internal/auth"
	"expansion-monitor/internal/database"
	"expansion-monitor/internal/events"
	"expansion-monitor/internal/logging"
	"expansion-monitor/internal/market"
	"expansion-monitor/internal/scanner"
	"expansion-monitor/internal/signals"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RateLimiter provides simple in-memory rate limiting per client and endpoint
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int           // max requests
	window   time.Duration // time window
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow checks if a request is allowed for the given key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	windowStart := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// HistoryStore reads journaled signals
type HistoryStore interface {
	HealthCheck(ctx context.Context) error
	RecentSignals(ctx context.Context, symbol string, limit int) ([]database.SignalRecord, error)
}

// Server represents the HTTP API server
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      ServerConfig
	scanner     *scanner.Scanner
	evaluator   *signals.Evaluator
	provider    market.Provider
	history     HistoryStore
	eventBus    *events.EventBus
	metrics     http.Handler
	authService *auth.Service
	authEnabled bool
	rateLimiter *RateLimiter
	wsHub       *WSHub
	startedAt   time.Time
	log         *logging.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	ProductionMode bool
	AllowedOrigins []string
	RateLimit      int // requests per minute per client and endpoint, 0 disables
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Dependencies are the components the API exposes. Scanner, Evaluator and Provider are required.
type Dependencies struct {
	Scanner   *scanner.Scanner
	Evaluator *signals.Evaluator
	Provider  market.Provider
	History   HistoryStore      // nil when the journal is disabled
	EventBus  *events.EventBus  // nil disables /ws
	Metrics   http.Handler      // nil disables /metrics
	Auth      *auth.Service     // nil when auth is disabled
}

// NewServer creates a new API server
func NewServer(config ServerConfig, deps Dependencies) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(config.AllowedOrigins) == 0 || (len(config.AllowedOrigins) == 1 && config.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = config.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:      router,
		config:      config,
		scanner:     deps.Scanner,
		evaluator:   deps.Evaluator,
		provider:    deps.Provider,
		history:     deps.History,
		eventBus:    deps.EventBus,
		metrics:     deps.Metrics,
		authService: deps.Auth,
		authEnabled: deps.Auth != nil,
		startedAt:   time.Now(),
		log:         logging.WithComponent("api"),
	}
	router.Use(server.requestLogger())

	if config.RateLimit > 0 {
		server.rateLimiter = NewRateLimiter(config.RateLimit, time.Minute)
	}
	if deps.EventBus != nil {
		server.wsHub = InitWebSocket(deps.EventBus)
	}

	server.setupRoutes()

	return server
}

// requestLogger logs each request through the structured logger
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logging.APIContext(c.Request.Method, path, c.Writer.Status()).
			WithDuration(time.Since(start)).
			Debug("Request handled", "client_ip", c.ClientIP())
	}
}

// rateLimitMiddleware limits requests per client IP and endpoint
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		if !s.rateLimiter.Allow(c.ClientIP() + " " + path) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "RATE_LIMITED",
				"message": "too many requests, please slow down",
				"path":    path,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/api/health", s.handleHealth)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}

	if s.authEnabled {
		s.router.POST("/api/auth/token", s.rateLimitMiddleware(), s.authService.TokenHandler)
	}

	s.router.GET("/api/auth/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"auth_enabled": s.authEnabled})
	})

	api := s.router.Group("/api")
	api.Use(s.rateLimitMiddleware())
	if s.authEnabled {
		api.Use(auth.Middleware(s.authService.JWT()))
	}

	{
		api.GET("/status", s.requireScope(auth.ScopeRead), s.handleStatus)
		api.GET("/signals", s.requireScope(auth.ScopeRead), s.handleGetSignals)
		api.GET("/signals/:symbol", s.requireScope(auth.ScopeRead), s.handleEvaluateSymbol)
		api.POST("/scan", s.requireScope(auth.ScopeScan), s.handleScan)
		api.GET("/indicators/:symbol/:timeframe", s.requireScope(auth.ScopeRead), s.handleIndicators)
		api.GET("/history/:symbol", s.requireScope(auth.ScopeRead), s.handleHistory)
	}

	if s.wsHub != nil {
		ws := s.router.Group("/ws")
		if s.authEnabled {
			ws.Use(auth.Middleware(s.authService.JWT()))
		}
		ws.GET("", s.handleWebSocket)
	}
}

// requireScope enforces a token scope only when auth is enabled
func (s *Server) requireScope(scope string) gin.HandlerFunc {
	if !s.authEnabled {
		return func(c *gin.Context) { c.Next() }
	}
	return auth.RequireScope(scope)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	readTimeout := s.config.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := s.config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info("Starting HTTP server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	if s.wsHub != nil {
		s.wsHub.Stop()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":   "healthy",
		"database": "disabled",
		"uptime":   time.Since(s.startedAt).Round(time.Second).String(),
	}

	if s.history != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.history.HealthCheck(ctx); err != nil {
			resp["status"] = "unhealthy"
			resp["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		resp["database"] = "healthy"
	}

	c.JSON(http.StatusOK, resp)
}
