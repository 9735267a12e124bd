package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/CWS-Project/order-service/internal/logging"
	"github.com/CWS-Project/order-service/internal/models"
	"github.com/CWS-Project/order-service/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	queryTypeID   = "id"
	queryTypeUser = "user"
)

// CreateOrder handles POST /api/v1/orders/
func (h *Handlers) CreateOrder(c *gin.Context) {
	log := logging.FromContext(c.Request.Context(), h.logger)

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("Failed to bind request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		respondError(c, http.StatusBadRequest, "user_id is required")
		return
	}

	result, err := h.orders.CreateFromCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusBadRequest, createErrorMessage(err))
		return
	}

	respond(c, http.StatusOK, "Order created successfully", result)
}

// GetOrders handles GET /api/v1/orders/?q=...&q_type=id|user
func (h *Handlers) GetOrders(c *gin.Context) {
	qType := c.DefaultQuery("q_type", queryTypeID)
	if qType != queryTypeID && qType != queryTypeUser {
		respondError(c, http.StatusBadRequest, "Invalid query type")
		return
	}

	// A blank q is rejected for both query types. An empty user id would
	// otherwise cache an "orders:" list shared by every blank request, and an
	// empty order id can never match.
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		respondError(c, http.StatusBadRequest, "q is required")
		return
	}

	ctx := c.Request.Context()

	if qType == queryTypeUser {
		orders, err := h.orders.GetByUser(ctx, q)
		if err != nil {
			respondError(c, http.StatusNotFound, "Orders not found")
			return
		}
		respond(c, http.StatusOK, "Orders found", orders)
		return
	}

	order, err := h.orders.GetByID(ctx, q)
	if err != nil {
		respondError(c, http.StatusNotFound, "Order not found")
		return
	}
	respond(c, http.StatusOK, "Order found", order)
}

// MarkOrderPaid handles PUT /api/v1/orders/:order_id
func (h *Handlers) MarkOrderPaid(c *gin.Context) {
	orderID := c.Param("order_id")

	if err := h.orders.MarkAsPaid(c.Request.Context(), orderID); err != nil {
		respondError(c, http.StatusBadRequest, "Failed to mark order as paid")
		return
	}

	respond(c, http.StatusOK, "Order marked as paid", models.MarkPaidResult{
		OrderID: orderID,
		Status:  models.OrderStatusPaid,
	})
}

func createErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, service.ErrInvalidCart):
		return "Cart contains an invalid item"
	case errors.Is(err, service.ErrProductUnavailable):
		return "A product in the cart is unavailable"
	case errors.Is(err, service.ErrPaymentIntentFailed):
		return "Failed to create payment intent"
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return "Failed to fetch cart"
	default:
		return "Failed to create order"
	}
}
