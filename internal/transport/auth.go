package transport

import (
	"context"
	"net/http"
)

// Authenticator applies authentication to HTTP requests. It is called once
// per attempt, so a token-backed authenticator can refresh between retries.
type Authenticator interface {
	Apply(ctx context.Context, req *http.Request) error
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ context.Context, _ *http.Request) error {
	return nil
}

// BasicAuth sends a static user/key pair with every request.
type BasicAuth struct {
	User string
	Key  string
}

// Apply implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Apply(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(a.User, a.Key)
	return nil
}

// TokenSource yields a currently valid access token, refreshing it if needed.
type TokenSource interface {
	EnsureValid(ctx context.Context) (string, error)
}

// BearerAuth implements Bearer token authentication backed by a TokenSource.
type BearerAuth struct {
	Source TokenSource
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(ctx context.Context, req *http.Request) error {
	token, err := a.Source.EnsureValid(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
