package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/CWS-Project/order-service/internal/logging"
)

const headerRequestID = "X-Request-ID"

// ErrUpstream is returned for every failed envelope call: transport faults,
// undecodable bodies and envelopes whose status is not 200.
var ErrUpstream = errors.New("upstream call failed")

// envelope is the response shape shared by the cart and product services.
// Only the envelope status decides success.
type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func getEnvelope(ctx context.Context, httpClient *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	setHeaders(ctx, req)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode envelope (http %d): %w", ErrUpstream, resp.StatusCode, err)
	}

	if env.Status != http.StatusOK {
		return fmt.Errorf("%w: envelope status %d", ErrUpstream, env.Status)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %w", ErrUpstream, err)
	}
	return nil
}

func setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")

	if requestID := logging.RequestIDFrom(ctx); requestID != "" {
		req.Header.Set(headerRequestID, requestID)
	}
}

func trimBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
