package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/CWS-Project/order-service/internal/config"
	"github.com/CWS-Project/order-service/internal/models"
	"go.uber.org/zap"
)

// ErrMissingAPIKey is returned when no Stripe secret key is configured.
var ErrMissingAPIKey = errors.New("stripe api key not configured")

// PaymentIntentParams describes a payment intent to create. Amount is in the
// currency's minor unit.
type PaymentIntentParams struct {
	Amount      int64
	Currency    string
	Description string
	Metadata    map[string]string
}

type stripeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StripePaymentClient creates payment intents through the Stripe REST API.
type StripePaymentClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

func NewStripePaymentClient(cfg config.StripeConfig, logger *zap.Logger) *StripePaymentClient {
	return &StripePaymentClient{
		baseURL: trimBaseURL(cfg.BaseURL),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger.Named("payment-client"),
	}
}

// CreatePaymentIntent creates a payment intent with automatic payment
// methods enabled.
func (c *StripePaymentClient) CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*models.PaymentIntent, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c.logger.Debug("Creating payment intent",
		zap.Int64("amount", params.Amount),
		zap.String("currency", params.Currency),
	)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", strings.ToLower(params.Currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	if params.Description != "" {
		form.Set("description", params.Description)
	}
	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	endpoint := c.baseURL + "/v1/payment_intents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	setHeaders(ctx, req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Payment intent request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body stripeErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&body)
		c.logger.Error("Payment intent request returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("stripe_error_type", body.Error.Type),
			zap.String("stripe_error_code", body.Error.Code),
		)
		return nil, fmt.Errorf("stripe returned status %d: %s", resp.StatusCode, body.Error.Message)
	}

	var intent models.PaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	if intent.ID == "" {
		return nil, errors.New("stripe returned a payment intent without id")
	}

	c.logger.Info("Payment intent created",
		zap.String("payment_id", intent.ID),
		zap.Int64("amount", intent.Amount),
	)
	return &intent, nil
}
