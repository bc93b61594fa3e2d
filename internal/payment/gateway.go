// Package payment holds the status-check trigger point for the external
// payment gateway. The gateway's own protocol is out of scope; polling its
// status endpoint is the only interaction the engine needs.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// HTTPGateway polls the provider's status endpoint.
type HTTPGateway struct {
	client  *http.Client
	baseURL string
}

func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

func (g *HTTPGateway) CheckStatus(ctx context.Context, orderID string) error {
	endpoint := g.baseURL + "?order_id=" + url.QueryEscape(orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("payment status check returned %d", resp.StatusCode)
	}
	return nil
}

// NoopGateway logs polls instead of performing them; used when no provider
// is configured.
type NoopGateway struct {
	Logger *slog.Logger
}

func (g NoopGateway) CheckStatus(ctx context.Context, orderID string) error {
	g.Logger.InfoContext(ctx, "payment status poll (no gateway configured)", "order_id", orderID)
	return nil
}
