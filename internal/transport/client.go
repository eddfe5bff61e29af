package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/agentstation/catalogbridge/internal/metrics"
	"github.com/agentstation/catalogbridge/pkg/constants"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
)

// Client sends JSON requests to one API with authentication, an explicit
// timeout and a bounded retry for transient failures.
type Client struct {
	api     string
	baseURL string
	http    *http.Client
	auth    Authenticator
	metrics *metrics.Recorder

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetry sets the retry budget and the initial backoff between attempts.
func WithRetry(maxRetries int, initial time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if initial > 0 {
			c.initialBackoff = initial
		}
	}
}

// WithMetrics counts every request in the given recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// New creates a transport client for the API rooted at baseURL.
// The api name ("source", "target") labels errors, logs and metrics.
func New(api, baseURL string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		api:            api,
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{Timeout: constants.DefaultHTTPTimeout},
		auth:           auth,
		maxRetries:     constants.MaxRetries,
		initialBackoff: constants.RetryBackoff,
		maxBackoff:     constants.MaxRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// API returns the name this client reports in errors and metrics.
func (c *Client) API() string {
	return c.api
}

// Do sends req and decodes a JSON response body into out (if out is non-nil).
// Network errors and retryable statuses are repeated up to the retry budget,
// with narrower rules for non-idempotent requests (see isTransient); every other non-2xx status
// fails immediately with an *errors.APIError.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return errors.WrapParse("json", "request body", err)
		}
	}

	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	logger := logging.FromContext(ctx)
	attempt := func() error {
		err := c.send(ctx, req.Method, endpoint, payload, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !isTransient(req.Idempotent, err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff
	policy.MaxInterval = c.maxBackoff
	policy.MaxElapsedTime = 0

	var b backoff.BackOff = backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)
	return backoff.RetryNotify(attempt, b, func(err error, wait time.Duration) {
		logger.Warn().
			Err(err).
			Str("api", c.api).
			Str("method", req.Method).
			Str("url", redact(endpoint)).
			Dur("retry_in", wait).
			Msg("Transient request failure, retrying")
	})
}

// send performs exactly one HTTP exchange.
func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	var httpReq *http.Request
	var err error
	if body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, method, endpoint, body)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	}
	if err != nil {
		return errors.WrapResource("create", "request", method+" "+endpoint, err)
	}

	if err := c.auth.Apply(ctx, httpReq); err != nil {
		return err
	}

	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.Request(c.api, method, 0)
		return &errors.APIError{
			API:      c.api,
			Method:   method,
			Endpoint: redact(endpoint),
			Message:  "request failed",
			Err:      err,
		}
	}
	c.metrics.Request(c.api, method, resp.StatusCode)

	logging.FromContext(ctx).Debug().
		Str("api", c.api).
		Str("method", method).
		Str("url", redact(endpoint)).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	return DecodeResponse(resp, out, c.api, method, redact(endpoint))
}

// isTransient reports whether a failed attempt may succeed when repeated.
// A non-idempotent request is only repeated when the server cannot have acted
// on it: a refused or reset connection, or a 429. One that timed out or got a
// 5xx may already have created its record.
func isTransient(idempotent bool, err error) bool {
	if errors.Is(err, errors.ErrAuthentication) {
		return false
	}
	var apiErr *errors.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if !idempotent {
		if apiErr.StatusCode == 0 {
			return apiErr.Err != nil && !errors.IsTimeout(err)
		}
		return errors.IsRateLimited(err)
	}
	if apiErr.StatusCode == 0 {
		// no response at all: connection refused, reset, client timeout
		return apiErr.Err != nil
	}
	return errors.IsRetryable(err)
}

// redact strips user info from a URL before it is logged.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	return u.String()
}
