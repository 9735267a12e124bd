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

// productPayload mirrors models.Product with presence tracking so that a
// 200 envelope without a usable product is rejected.
type productPayload struct {
	Price *float64 `json:"price"`
	Name  *string  `json:"name"`
}

// ProductClient reads price and name from the product catalog.
type ProductClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewProductClient(cfg config.ServiceConfig, logger *zap.Logger) *ProductClient {
	return &ProductClient{
		baseURL: trimBaseURL(cfg.BaseURL),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("product-client"),
	}
}

func (c *ProductClient) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	c.logger.Debug("Fetching product", zap.String("product_id", productID))

	endpoint := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, url.PathEscape(productID))

	var payload productPayload
	if err := getEnvelope(ctx, c.httpClient, endpoint, &payload); err != nil {
		c.logger.Error("Product request failed", zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}
	if payload.Price == nil || payload.Name == nil {
		err := fmt.Errorf("%w: product %q has no price or name", ErrUpstream, productID)
		c.logger.Error("Product response incomplete", zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}

	return &models.Product{Price: *payload.Price, Name: *payload.Name}, nil
}
