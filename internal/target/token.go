package target

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/catalogbridge/internal/transport"
	"github.com/agentstation/catalogbridge/pkg/constants"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
)

const tokenPath = "/api/oauth/token"

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenManager owns the target API access token. It is the single writer of
// the token; every authenticated request goes through EnsureValid first.
type TokenManager struct {
	http         *transport.Client
	clientID     string
	clientSecret string
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenManager creates a manager exchanging client credentials at baseURL.
func NewTokenManager(baseURL, clientID, clientSecret string, opts ...transport.Option) *TokenManager {
	return &TokenManager{
		http:         transport.New("target", baseURL, &transport.NoAuth{}, opts...),
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// EnsureValid returns the current token, acquiring a new one when there is
// none or the stored expiry (already shortened by the safety margin) has passed.
func (m *TokenManager) EnsureValid(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.expiresAt) {
		return m.token, nil
	}
	if err := m.acquire(ctx); err != nil {
		return "", err
	}
	return m.token, nil
}

// ExpiresAt reports when the current token will be considered stale.
func (m *TokenManager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}

func (m *TokenManager) acquire(ctx context.Context) error {
	acquiredAt := m.now()

	var resp tokenResponse
	err := m.http.Do(ctx, transport.Lookup(tokenPath, tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     m.clientID,
		ClientSecret: m.clientSecret,
	}), &resp)
	if err != nil {
		return &errors.AuthenticationError{
			API:     "target",
			Method:  "client_credentials",
			Message: "token request failed",
			Err:     err,
		}
	}
	if resp.AccessToken == "" {
		return &errors.AuthenticationError{
			API:     "target",
			Method:  "client_credentials",
			Message: "token response carried no access_token",
		}
	}

	lifetime := time.Duration(resp.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = constants.DefaultTokenLifetime
	}

	m.token = resp.AccessToken
	m.expiresAt = acquiredAt.Add(lifetime - constants.TokenExpiryMargin)

	logging.FromContext(ctx).Debug().
		Time("expires_at", m.expiresAt).
		Msg("Acquired target access token")
	return nil
}
