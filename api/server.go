package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sentinelops/sentinel/api/handlers"
	"github.com/sentinelops/sentinel/api/middleware"
	"github.com/sentinelops/sentinel/api/websocket"
	"github.com/sentinelops/sentinel/internal/auth"
	"github.com/sentinelops/sentinel/internal/events"
	"github.com/sentinelops/sentinel/internal/history"
	"github.com/sentinelops/sentinel/internal/metrics"
	"github.com/sentinelops/sentinel/internal/monitor"
	"github.com/sentinelops/sentinel/internal/policy"
	"github.com/sentinelops/sentinel/internal/registry"
	"github.com/sentinelops/sentinel/internal/remediation"
	"github.com/sentinelops/sentinel/internal/telemetry"
	"github.com/sentinelops/sentinel/pkg/config"
	"github.com/sentinelops/sentinel/pkg/database"
	"github.com/sentinelops/sentinel/pkg/database/queries"
)

// Dependencies collects everything the HTTP surface exposes.
type Dependencies struct {
	DB         *database.DB
	Querier    telemetry.Querier
	Registry   *registry.Registry
	History    *history.Store
	Monitor    *monitor.Monitor
	Policies   *policy.Store
	Controller *remediation.Controller
	ActionLog  *remediation.ActionLog
	Executor   *remediation.Executor
	Publisher  *events.Publisher
	Bus        *events.EventBus
	Metrics    *metrics.Metrics
}

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.APIConfig
	deps        Dependencies
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

func NewServer(cfg config.APIConfig, wsCfg config.WebSocketConfig, deps Dependencies) (*Server, error) {
	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenExpiry)
	wsHub := websocket.NewHub(deps.Registry.Current, wsCfg.SeenLimit)

	s := &Server{
		router:      router,
		config:      cfg,
		deps:        deps,
		authService: authService,
		wsHub:       wsHub,
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	go wsHub.Run()

	// Forward detection and remediation events to WebSocket clients
	s.wsBridge = websocket.NewEventBridge(wsHub, deps.Bus.SubscribeAll())
	s.wsBridge.Start()

	return s, nil
}

func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestSizeLimit(1 << 20))

	// A sliding window of burst requests per burst/rps seconds sustains the
	// configured average rate while absorbing bursts up to the burst size.
	rps := s.config.RateLimitRPS
	if rps <= 0 {
		rps = 50
	}
	burst := s.config.RateLimitBurst
	if burst <= 0 {
		burst = 100
	}
	window := time.Duration(float64(burst) / rps * float64(time.Second))
	rateLimiter := middleware.NewRateLimiter(burst, window)
	s.router.Use(middleware.RateLimit(rateLimiter))

	return nil
}

func (s *Server) setupRoutes() error {
	passwordHash, err := auth.HashPassword(s.config.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	var (
		anomalyRepo *queries.AnomalyEventRepository
		actionRepo  *queries.ActionRepository
	)
	if s.deps.DB != nil {
		anomalyRepo = queries.NewAnomalyEventRepository(s.deps.DB.DB)
		actionRepo = queries.NewActionRepository(s.deps.DB.DB)
	}

	tokenExpiry := s.config.TokenExpiry
	if tokenExpiry == 0 {
		tokenExpiry = 24 * time.Hour
	}

	healthHandler := handlers.NewHealthHandler(s.deps.DB, s.deps.Querier)
	authHandler := handlers.NewAuthHandler(s.authService, s.config.AdminUser, passwordHash, tokenExpiry)
	anomalyHandler := handlers.NewAnomalyHandler(s.deps.Registry, s.deps.History, s.deps.Monitor, anomalyRepo)
	policyHandler := handlers.NewPolicyHandler(s.deps.Policies, s.deps.Publisher)
	actionHandler := handlers.NewActionHandler(s.deps.Controller, s.deps.ActionLog, s.deps.Executor, s.deps.Policies, actionRepo)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)
	s.router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	// Auth routes
	s.router.POST("/auth/login", middleware.AuthRateLimiter(), authHandler.Login)

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Read-only detection surface
	s.router.GET("/anomalies", anomalyHandler.GetAnomalies)
	s.router.GET("/anomalies/history", anomalyHandler.GetAnomalyHistory)
	s.router.GET("/predictions", anomalyHandler.GetPredictions)
	s.router.GET("/predictions/all", anomalyHandler.GetPredictions)
	s.router.GET("/predictions/:service", anomalyHandler.GetServicePredictions)
	s.router.GET("/services/health", anomalyHandler.GetServicesHealth)
	s.router.GET("/detector", anomalyHandler.GetDetector)

	// Read-only policy and remediation surface
	s.router.GET("/policies", policyHandler.List)
	s.router.GET("/policies/:name", policyHandler.Get)
	s.router.GET("/actions", actionHandler.GetActions)
	s.router.GET("/actions/recent", actionHandler.GetRecentActions)
	s.router.GET("/actions/history", actionHandler.GetActionHistory)
	s.router.GET("/remediation/status", actionHandler.Status)
	s.router.GET("/status", actionHandler.Status)

	// Protected routes
	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		// Detection
		protected.POST("/detect/run", anomalyHandler.RunDetection)
		protected.POST("/detect/manual", anomalyHandler.RunDetection)
		protected.PUT("/detector", anomalyHandler.SetDetector)
		protected.POST("/detector/reset", anomalyHandler.ResetModels)

		// Policies
		protected.POST("/policies", policyHandler.Create)
		protected.PUT("/policies/:name", policyHandler.Update)
		protected.DELETE("/policies/:name", policyHandler.Delete)

		// Remediation
		protected.POST("/remediation/evaluate", actionHandler.Evaluate)
		protected.POST("/evaluate", actionHandler.Evaluate)
		protected.POST("/remediation/toggle", actionHandler.Toggle)
		protected.POST("/toggle", actionHandler.Toggle)
		protected.POST("/remediation/run", actionHandler.RunCycle)
		protected.POST("/actions/execute", actionHandler.Execute)
	}

	return nil
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
