package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentstation/catalogbridge/pkg/errors"
)

// maxErrorBody bounds how much of a failed response is kept in an error message.
const maxErrorBody = 2048

// Request describes one call relative to a Client's base URL.
// Idempotent requests may be repeated after any transient failure.
type Request struct {
	Method     string
	Path       string
	Query      url.Values
	Body       any
	Idempotent bool
}

// Get builds a GET request.
func Get(path string, query url.Values) *Request {
	return &Request{Method: http.MethodGet, Path: path, Query: query, Idempotent: true}
}

// Post builds a POST request with a JSON body that creates or triggers
// something on the server.
func Post(path string, body any) *Request {
	return &Request{Method: http.MethodPost, Path: path, Body: body}
}

// Lookup builds a POST request that only reads, such as a search or a
// token exchange.
func Lookup(path string, body any) *Request {
	return &Request{Method: http.MethodPost, Path: path, Body: body, Idempotent: true}
}

// Patch builds a PATCH request with a JSON body.
func Patch(path string, body any) *Request {
	return &Request{Method: http.MethodPatch, Path: path, Body: body, Idempotent: true}
}

// PathEscape joins escaped segments onto a path prefix.
func PathEscape(prefix string, segments ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// DecodeResponse closes resp.Body and decodes JSON into target. Any non-2xx
// status becomes an *errors.APIError carrying (a prefix of) the body. An empty
// body, such as a 204 reply to a create, leaves target untouched.
func DecodeResponse(resp *http.Response, target any, api, method, endpoint string) error {
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.APIError{
			API:        api,
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody] + "..."
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &errors.APIError{
			API:        api,
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	if target == nil || len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", method+" "+endpoint, err)
	}
	return nil
}
