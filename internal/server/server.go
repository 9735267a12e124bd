package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/CWS-Project/order-service/internal/config"
	"github.com/CWS-Project/order-service/internal/handlers"
	"github.com/CWS-Project/order-service/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	handlers   *handlers.Handlers
	logger     *zap.Logger
}

// New wires the routes and middleware. gatherer backs the /metrics endpoint.
func New(h *handlers.Handlers, cfg *config.Config, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if cfg.Logging.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		handlers.RequestID(),
		handlers.AccessLog(logger.Named("http")),
		handlers.Instrument(m),
	)

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logger,
	}
	s.setupRoutes(gatherer)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/", s.handlers.Health)
	s.router.GET("/healthz", s.handlers.Health)
	s.router.GET("/readyz", s.handlers.Ready)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	orders := s.router.Group("/api/v1/orders")
	{
		orders.POST("/", s.handlers.CreateOrder)
		orders.GET("/", s.handlers.GetOrders)
		orders.PUT("/:order_id", s.handlers.MarkOrderPaid)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
