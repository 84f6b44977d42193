// Package auth resolves bearer tokens against the external identity
// provider.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Identity is the resolved subject of a verified token
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Admin  bool   `json:"is_admin"`
}

// TokenVerifier resolves a bearer token to an identity. Implementations
// return an error for expired, malformed or revoked tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// HTTPVerifier verifies tokens against the identity provider's
// introspection endpoint, authenticating itself with the service key.
type HTTPVerifier struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewHTTPVerifier creates a verifier against the given provider
func NewHTTPVerifier(baseURL, serviceKey string) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Verify interface compliance
var _ TokenVerifier = (*HTTPVerifier)(nil)

// Verify resolves the token via the provider
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/auth/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Service-Key", v.serviceKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("token rejected by identity provider")
	default:
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if identity.UserID == "" {
		return nil, fmt.Errorf("identity response carries no user id")
	}
	return &identity, nil
}
