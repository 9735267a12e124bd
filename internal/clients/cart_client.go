package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/CWS-Project/order-service/internal/config"
	"github.com/CWS-Project/order-service/internal/models"
	"go.uber.org/zap"
)

// CartClient reads a user's cart from the auth service.
type CartClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewCartClient(cfg config.ServiceConfig, logger *zap.Logger) *CartClient {
	return &CartClient{
		baseURL: trimBaseURL(cfg.BaseURL),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("cart-client"),
	}
}

// GetCart returns the cart lines for userID. An empty cart is not an error.
func (c *CartClient) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	c.logger.Debug("Fetching cart", zap.String("user_id", userID))

	endpoint := fmt.Sprintf("%s/api/v1/customer/cart/%s", c.baseURL, url.PathEscape(userID))

	var items []models.CartItem
	if err := getEnvelope(ctx, c.httpClient, endpoint, &items); err != nil {
		c.logger.Error("Cart request failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("Cart fetched", zap.String("user_id", userID), zap.Int("items", len(items)))
	return items, nil
}
