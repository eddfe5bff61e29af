// Package legacy reads articles and media from the legacy shop's REST API.
package legacy

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/agentstation/catalogbridge/internal/transport"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
)

// Client is a basic-auth client for the legacy API.
type Client struct {
	http *transport.Client
}

// New creates a client for the legacy API. baseURL may be the shop origin or
// the API root; both "https://shop.example" and "https://shop.example/api" work.
func New(baseURL, user, key string, opts ...transport.Option) *Client {
	apiURL := BaseOrigin(baseURL) + "/api"
	return &Client{
		http: transport.New("source", apiURL, &transport.BasicAuth{User: user, Key: key}, opts...),
	}
}

// Lookup fetches an article by its number. A missing article yields an
// *errors.NotFoundError, which callers treat as a skip rather than a failure.
func (c *Client) Lookup(ctx context.Context, articleNumber string) (*Product, error) {
	var resp envelope[rawArticle]
	query := url.Values{"useNumberAsId": []string{"true"}}
	err := c.http.Do(ctx, transport.Get(transport.PathEscape("/articles", articleNumber), query), &resp)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError("article", articleNumber)
		}
		return nil, err
	}

	p := resp.Data.normalize(articleNumber)
	logging.FromContext(ctx).Debug().
		Int("images", len(p.Images)).
		Int("categories", len(p.Categories)).
		Msg("Fetched legacy article")
	return p, nil
}

// Media fetches one media record.
func (c *Client) Media(ctx context.Context, id int) (*Media, error) {
	var resp envelope[Media]
	if err := c.http.Do(ctx, transport.Get(transport.PathEscape("/media", strconv.Itoa(id)), nil), &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// BaseOrigin returns the API URL without its trailing /api segment. Relative
// media paths resolve against it.
func (c *Client) BaseOrigin() string {
	return BaseOrigin(c.http.BaseURL())
}

// BaseOrigin strips a trailing /api path segment from an API URL.
func BaseOrigin(apiURL string) string {
	trimmed := strings.TrimRight(apiURL, "/")
	return strings.TrimSuffix(trimmed, "/api")
}
