package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ghostpass/config"
	"ghostpass/internal/core/ports"
)

// PushClient implements ports.Notifier against a push delivery API. Pushes
// are best-effort: callers log failures and never roll anything back.
type PushClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPushClient creates a push notification client from config.
func NewPushClient(cfg config.PushProviderConfig) *PushClient {
	return &PushClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Push delivers a notification to the device bound to the wallet.
func (c *PushClient) Push(ctx context.Context, n ports.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/push", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("deliver push: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("deliver push: status %d", resp.StatusCode)
	}
	return nil
}
