package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/car-analytics/api/handlers"
	"github.com/OldStager01/car-analytics/api/middleware"
	"github.com/OldStager01/car-analytics/api/websocket"
	"github.com/OldStager01/car-analytics/internal/analytics"
	"github.com/OldStager01/car-analytics/internal/events"
	"github.com/OldStager01/car-analytics/pkg/config"
)

const (
	predictRateLimit = 30
	predictRateBurst = 10
)

// Dependencies are the long-lived components the routes serve from. The
// composition root owns them; the server never closes them.
type Dependencies struct {
	Resolver  handlers.SourceReporter
	Engine    *analytics.Engine
	Predictor handlers.Predictor
	ModelErr  error
	Events    *events.EventBus
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.APIConfig
	wsConfig   config.WebSocketConfig
	deps       Dependencies
	wsHub      *websocket.Hub
	wsBridge   *websocket.EventBridge
}

func NewServer(cfg config.APIConfig, wsCfg config.WebSocketConfig, mode string, deps Dependencies) *Server {
	if mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if deps.Engine == nil {
		deps.Engine = analytics.New(analytics.Config{})
	}

	s := &Server{
		router:   gin.New(),
		config:   cfg,
		wsConfig: wsCfg,
		deps:     deps,
	}

	if wsCfg.Enabled {
		s.wsHub = websocket.NewHub(websocket.NewSettings(wsCfg))
		go s.wsHub.Run()

		if deps.Events != nil {
			s.wsBridge = websocket.NewEventBridge(s.wsHub, deps.Events.SubscribeAll())
			s.wsBridge.Start()
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.CORS(middleware.CORSFromConfig(s.config.CORS)))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestSizeLimit(s.config.MaxRequestSize))

	if s.config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute, s.config.RateBurst)
		s.router.Use(middleware.RateLimit(rateLimiter))
	}
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.deps.Resolver, s.deps.ModelErr)
	analyticsHandler := handlers.NewAnalyticsHandler(s.deps.Resolver, s.deps.Engine)
	predictionHandler := handlers.NewPredictionHandler(s.deps.Resolver, s.deps.Engine, s.deps.Predictor, s.deps.ModelErr)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	if s.wsHub != nil {
		s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))
	}

	endpointLimits := middleware.NewEndpointRateLimiter()
	endpointLimits.AddEndpoint("/api/v1/predict", predictRateLimit, time.Minute, predictRateBurst)

	v1 := s.router.Group("/api/v1")
	v1.Use(endpointLimits.Middleware())
	{
		v1.GET("/dashboard", analyticsHandler.Dashboard)
		v1.GET("/domains", analyticsHandler.Domains)
		v1.POST("/predict", predictionHandler.Predict)
	}
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	if s.wsHub != nil {
		s.wsHub.Stop()
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
