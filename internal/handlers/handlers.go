package handlers

import (
	"context"
	"net/http"

	"github.com/CWS-Project/order-service/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "order-service"

// OrderWorkflow is the order service surface used by the HTTP layer.
type OrderWorkflow interface {
	CreateFromCart(ctx context.Context, userID string) (*models.CreateOrderResult, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByUser(ctx context.Context, userID string) ([]*models.Order, error)
	MarkAsPaid(ctx context.Context, id string) error
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handlers for the order service.
type Handlers struct {
	orders       OrderWorkflow
	dependencies map[string]Pinger
	logger       *zap.Logger
}

// NewHandlers creates a new handlers instance. dependencies are checked by
// the readiness probe.
func NewHandlers(orders OrderWorkflow, dependencies map[string]Pinger, logger *zap.Logger) *Handlers {
	return &Handlers{
		orders:       orders,
		dependencies: dependencies,
		logger:       logger.Named("handlers"),
	}
}

// Response is the envelope returned by every endpoint.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Status: status, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	respond(c, status, message, nil)
}

// Health handles GET /healthz and GET /.
func (h *Handlers) Health(c *gin.Context) {
	respond(c, http.StatusOK, "OK", gin.H{"service": serviceName})
}

// Ready handles GET /readyz.
func (h *Handlers) Ready(c *gin.Context) {
	checks := make(map[string]string, len(h.dependencies))
	ready := true

	for name, dep := range h.dependencies {
		if err := dep.Ping(c.Request.Context()); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		respond(c, http.StatusServiceUnavailable, "Not ready", checks)
		return
	}
	respond(c, http.StatusOK, "Ready", checks)
}
