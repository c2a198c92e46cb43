package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"ghostpass/config"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"
)

// IdentityClient implements ports.IdentityVerifier against a hosted identity
// verification API. Only the opaque session handle and its state are ever
// stored; documents and PII stay with the provider.
type IdentityClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewIdentityClient creates an identity verification client from config.
func NewIdentityClient(cfg config.IdentityProviderConfig) *IdentityClient {
	return &IdentityClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type startSessionRequest struct {
	ExternalID string `json:"external_id"`
}

// StartSession opens a verification session keyed by the wallet binding id.
func (c *IdentityClient) StartSession(ctx context.Context, bindingID string) (*ports.VerificationSession, error) {
	body, err := json.Marshal(startSessionRequest{ExternalID: bindingID})
	if err != nil {
		return nil, fmt.Errorf("marshal verification request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/verifications", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build verification request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperror.ErrIdentityProvider(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apperror.ErrIdentityProvider(fmt.Errorf("start verification: status %d", resp.StatusCode))
	}

	var session ports.VerificationSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, apperror.ErrIdentityProvider(fmt.Errorf("decode verification session: %w", err))
	}
	return &session, nil
}

// GetSession fetches the current state of a verification session.
func (c *IdentityClient) GetSession(ctx context.Context, sessionID string) (*ports.VerificationSession, error) {
	endpoint := c.baseURL + "/v1/verifications/" + url.PathEscape(sessionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build verification lookup: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperror.ErrIdentityProvider(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.ErrIdentityProvider(fmt.Errorf("get verification: status %d", resp.StatusCode))
	}

	var session ports.VerificationSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, apperror.ErrIdentityProvider(fmt.Errorf("decode verification session: %w", err))
	}
	return &session, nil
}
