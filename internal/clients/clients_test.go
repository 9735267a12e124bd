package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CWS-Project/order-service/internal/config"
	"github.com/CWS-Project/order-service/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serviceConfig(url string) config.ServiceConfig {
	return config.ServiceConfig{BaseURL: url, Timeout: 5 * time.Second}
}

func TestCartClient_GetCart(t *testing.T) {
	var gotPath, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		fmt.Fprint(w, `{"status":200,"data":[{"product_id":"p1","quantity":2},{"product_id":"p2"}]}`)
	}))
	defer srv.Close()

	c := NewCartClient(serviceConfig(srv.URL+"/"), zap.NewNop())
	ctx := logging.WithRequestID(context.Background(), "req-7")

	items, err := c.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "/api/v1/customer/cart/user-1", gotPath)
	assert.Equal(t, "req-7", gotRequestID)
	assert.Equal(t, 2, items[0].Qty())
	assert.Equal(t, 1, items[1].Qty())
}

func TestCartClient_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"non-200 envelope", `{"status":404,"data":null}`, http.StatusOK},
		{"envelope status 500", `{"status":500}`, http.StatusOK},
		{"undecodable body", `<html>bad gateway</html>`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewCartClient(serviceConfig(srv.URL), zap.NewNop())
			_, err := c.GetCart(context.Background(), "user-1")
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestCartClient_TransportFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewCartClient(serviceConfig(url), zap.NewNop())
	_, err := c.GetCart(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCartClient_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":200,"data":null}`)
	}))
	defer srv.Close()

	c := NewCartClient(serviceConfig(srv.URL), zap.NewNop())
	items, err := c.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProductClient_GetProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products/p1", r.URL.Path)
		fmt.Fprint(w, `{"status":200,"data":{"price":49.99,"name":"Widget","stock":3}}`)
	}))
	defer srv.Close()

	c := NewProductClient(serviceConfig(srv.URL), zap.NewNop())
	p, err := c.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 49.99, p.Price)
	assert.Equal(t, "Widget", p.Name)
}

func TestProductClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status":404,"message":"Product not found"}`)
	}))
	defer srv.Close()

	c := NewProductClient(serviceConfig(srv.URL), zap.NewNop())
	_, err := c.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestProductClient_MissingData(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null data", `{"status":200,"data":null}`},
		{"absent data", `{"status":200}`},
		{"empty object", `{"status":200,"data":{}}`},
		{"no price", `{"status":200,"data":{"name":"Widget"}}`},
		{"no name", `{"status":200,"data":{"price":10}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewProductClient(serviceConfig(srv.URL), zap.NewNop())
			p, err := c.GetProduct(context.Background(), "p1")
			assert.ErrorIs(t, err, ErrUpstream)
			assert.Nil(t, p)
		})
	}
}

func TestProductClient_ZeroPriceIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":200,"data":{"price":0,"name":"Sample"}}`)
	}))
	defer srv.Close()

	c := NewProductClient(serviceConfig(srv.URL), zap.NewNop())
	p, err := c.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Zero(t, p.Price)
	assert.Equal(t, "Sample", p.Name)
}

func TestStripePaymentClient_CreatePaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "11800", r.PostForm.Get("amount"))
		assert.Equal(t, "inr", r.PostForm.Get("currency"))
		assert.Equal(t, "Payment for order by user-1", r.PostForm.Get("description"))
		assert.Equal(t, "user-1", r.PostForm.Get("metadata[user_id]"))
		assert.Equal(t, "true", r.PostForm.Get("automatic_payment_methods[enabled]"))

		fmt.Fprint(w, `{"id":"pi_123","client_secret":"pi_123_secret","status":"requires_payment_method","amount":11800,"currency":"inr"}`)
	}))
	defer srv.Close()

	c := NewStripePaymentClient(config.StripeConfig{BaseURL: srv.URL, APIKey: "sk_test_123", Timeout: 5 * time.Second}, zap.NewNop())

	intent, err := c.CreatePaymentIntent(context.Background(), PaymentIntentParams{
		Amount:      11800,
		Currency:    "INR",
		Description: "Payment for order by user-1",
		Metadata:    map[string]string{"user_id": "user-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, int64(11800), intent.Amount)
}

func TestStripePaymentClient_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":{"type":"card_error","code":"amount_too_small","message":"Amount must be at least 50 paise"}}`)
	}))
	defer srv.Close()

	c := NewStripePaymentClient(config.StripeConfig{BaseURL: srv.URL, APIKey: "sk_test_123"}, zap.NewNop())

	_, err := c.CreatePaymentIntent(context.Background(), PaymentIntentParams{Amount: 1, Currency: "inr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
	assert.Contains(t, err.Error(), "at least 50 paise")
}

func TestStripePaymentClient_MissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewStripePaymentClient(config.StripeConfig{BaseURL: srv.URL}, zap.NewNop())

	_, err := c.CreatePaymentIntent(context.Background(), PaymentIntentParams{Amount: 100, Currency: "inr"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, called)
}
