package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CWS-Project/order-service/internal/metrics"
	"github.com/CWS-Project/order-service/internal/models"
	"github.com/CWS-Project/order-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOrderID = "65a1f0c2e4b0a1b2c3d4e5f6"

type MockWorkflow struct {
	mock.Mock
}

func (m *MockWorkflow) CreateFromCart(ctx context.Context, userID string) (*models.CreateOrderResult, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.(*models.CreateOrderResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWorkflow) GetByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWorkflow) GetByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWorkflow) MarkAsPaid(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/healthz", h.Health)
	r.GET("/readyz", h.Ready)
	orders := r.Group("/api/v1/orders")
	orders.POST("/", h.CreateOrder)
	orders.GET("/", h.GetOrders)
	orders.PUT("/:order_id", h.MarkOrderPaid)
	return r
}

func do(t *testing.T, r http.Handler, method, target, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandlers(&MockWorkflow{}, nil, zap.NewNop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "OK", resp.Message)
}

func TestReady(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		h := NewHandlers(&MockWorkflow{}, map[string]Pinger{"store": stubPinger{}, "cache": stubPinger{}}, zap.NewNop())
		w, _ := do(t, newTestRouter(h), http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("cache down", func(t *testing.T) {
		h := NewHandlers(&MockWorkflow{}, map[string]Pinger{"store": stubPinger{}, "cache": stubPinger{err: errors.New("dial tcp: refused")}}, zap.NewNop())
		w, resp := do(t, newTestRouter(h), http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "dial tcp: refused", resp.Data.(map[string]any)["cache"])
	})
}

func TestCreateOrder(t *testing.T) {
	wf := &MockWorkflow{}
	wf.On("CreateFromCart", mock.Anything, "user-1").
		Return(&models.CreateOrderResult{OrderID: testOrderID, GrandTotal: 118}, nil)

	h := NewHandlers(wf, nil, zap.NewNop())
	w, resp := do(t, newTestRouter(h), http.MethodPost, "/api/v1/orders/", `{"user_id":"user-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, testOrderID, data["order_id"])
	assert.Equal(t, 118.0, data["grand_total"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateOrder_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"user_id":`},
		{"missing user_id", `{}`},
		{"blank user_id", `{"user_id":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := &MockWorkflow{}
			h := NewHandlers(wf, nil, zap.NewNop())

			w, resp := do(t, newTestRouter(h), http.MethodPost, "/api/v1/orders/", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, http.StatusBadRequest, resp.Status)
			wf.AssertNotCalled(t, "CreateFromCart", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateOrder_WorkflowFailure(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{service.ErrEmptyCart, "Cart is empty"},
		{service.ErrProductUnavailable, "A product in the cart is unavailable"},
		{service.ErrPaymentIntentFailed, "Failed to create payment intent"},
		{service.ErrPersistenceFailed, "Failed to create order"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			wf := &MockWorkflow{}
			wf.On("CreateFromCart", mock.Anything, "user-1").Return(nil, tt.err)
			h := NewHandlers(wf, nil, zap.NewNop())

			w, resp := do(t, newTestRouter(h), http.MethodPost, "/api/v1/orders/", `{"user_id":"user-1"}`)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestGetOrders_InvalidQueryTypeSkipsWorkflow(t *testing.T) {
	wf := &MockWorkflow{}
	h := NewHandlers(wf, nil, zap.NewNop())

	w, resp := do(t, newTestRouter(h), http.MethodGet, "/api/v1/orders/?q=abc&q_type=email", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid query type", resp.Message)
	wf.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	wf.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
}

func TestGetOrders_ByID(t *testing.T) {
	wf := &MockWorkflow{}
	wf.On("GetByID", mock.Anything, testOrderID).Return(&models.Order{ID: testOrderID, Status: models.OrderStatusPending}, nil)
	wf.On("GetByID", mock.Anything, "missing").Return(nil, service.ErrNotFound)
	r := newTestRouter(NewHandlers(wf, nil, zap.NewNop()))

	w, resp := do(t, r, http.MethodGet, "/api/v1/orders/?q="+testOrderID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testOrderID, resp.Data.(map[string]any)["_id"])

	w, _ = do(t, r, http.MethodGet, "/api/v1/orders/?q=missing&q_type=id", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrders_ByUser(t *testing.T) {
	wf := &MockWorkflow{}
	wf.On("GetByUser", mock.Anything, "user-1").Return([]*models.Order{{ID: testOrderID}}, nil)
	wf.On("GetByUser", mock.Anything, "user-2").Return([]*models.Order{}, nil)
	wf.On("GetByUser", mock.Anything, "user-3").Return([]*models.Order{}, service.ErrUpstreamUnavailable)
	r := newTestRouter(NewHandlers(wf, nil, zap.NewNop()))

	w, resp := do(t, r, http.MethodGet, "/api/v1/orders/?q=user-1&q_type=user", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data, 1)

	w, resp = do(t, r, http.MethodGet, "/api/v1/orders/?q=user-2&q_type=user", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, resp.Data)

	w, _ = do(t, r, http.MethodGet, "/api/v1/orders/?q=user-3&q_type=user", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrders_MissingQuery(t *testing.T) {
	for _, target := range []string{
		"/api/v1/orders/",
		"/api/v1/orders/?q_type=id&q=",
		"/api/v1/orders/?q_type=user&q=",
		"/api/v1/orders/?q_type=user&q=%20%20",
	} {
		t.Run(target, func(t *testing.T) {
			wf := &MockWorkflow{}
			w, resp := do(t, newTestRouter(NewHandlers(wf, nil, zap.NewNop())), http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "q is required", resp.Message)
			wf.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			wf.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
		})
	}
}

func TestMarkOrderPaid(t *testing.T) {
	wf := &MockWorkflow{}
	wf.On("MarkAsPaid", mock.Anything, testOrderID).Return(nil)
	wf.On("MarkAsPaid", mock.Anything, "bogus").Return(service.ErrUpdateFailed)
	r := newTestRouter(NewHandlers(wf, nil, zap.NewNop()))

	w, resp := do(t, r, http.MethodPut, "/api/v1/orders/"+testOrderID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, testOrderID, data["order_id"])
	assert.Equal(t, "paid", data["status"])

	w, _ = do(t, r, http.MethodPut, "/api/v1/orders/bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestID_PreservesInbound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())

	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = c.GetHeader("X-Request-ID")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", seen)
}

func TestInstrument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(Instrument(m), AccessLog(zap.NewNop()))
	r.GET("/healthz", NewHandlers(&MockWorkflow{}, nil, zap.NewNop()).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/healthz", http.MethodGet, "200")))
}
