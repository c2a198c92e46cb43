package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ghostpass/config"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityConfig(baseURL string) config.IdentityProviderConfig {
	return config.IdentityProviderConfig{
		BaseURL: baseURL,
		APIKey:  "test-api-key",
		Timeout: 5 * time.Second,
	}
}

func TestIdentityClient_StartSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/verifications", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var req startSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "wallet-1", req.ExternalID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ports.VerificationSession{ //nolint:errcheck
			ID:     "verif_abc",
			Status: "pending",
		})
	}))
	defer srv.Close()

	client := NewIdentityClient(identityConfig(srv.URL))
	session, err := client.StartSession(context.Background(), "wallet-1")
	require.NoError(t, err)
	assert.Equal(t, "verif_abc", session.ID)
	assert.Equal(t, "pending", session.Status)
}

func TestIdentityClient_GetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/verifications/verif_abc", r.URL.Path)
		json.NewEncoder(w).Encode(ports.VerificationSession{ //nolint:errcheck
			ID:                   "verif_abc",
			Status:               "completed",
			RequiresManualReview: true,
		})
	}))
	defer srv.Close()

	client := NewIdentityClient(identityConfig(srv.URL))
	session, err := client.GetSession(context.Background(), "verif_abc")
	require.NoError(t, err)
	assert.Equal(t, "completed", session.Status)
	assert.True(t, session.RequiresManualReview)
}

func TestIdentityClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewIdentityClient(identityConfig(srv.URL))
	_, err := client.StartSession(context.Background(), "wallet-1")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "EXT_002", appErr.Code)
}
