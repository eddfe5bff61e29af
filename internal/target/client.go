// Package target talks to the target catalog's Admin API: token handling,
// entity search, create, partial update and upload-from-URL.
package target

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/agentstation/catalogbridge/internal/transport"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
)

// Client is an authenticated target API client. Every request first
// ensures a valid access token through the configured TokenSource.
type Client struct {
	http   *transport.Client
	dryRun bool
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	dryRun    bool
	transport []transport.Option
}

// WithDryRun makes every mutation a logged no-op. Reads still hit the server.
func WithDryRun(dryRun bool) Option {
	return func(o *clientOptions) {
		o.dryRun = dryRun
	}
}

// WithTransport passes options to the underlying transport client.
func WithTransport(opts ...transport.Option) Option {
	return func(o *clientOptions) {
		o.transport = append(o.transport, opts...)
	}
}

// New creates a client for the Admin API at baseURL, authenticated by tokens.
func New(baseURL string, tokens transport.TokenSource, opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		http:   transport.New("target", baseURL, &transport.BearerAuth{Source: tokens}, o.transport...),
		dryRun: o.dryRun,
	}
}

// DryRun reports whether mutations are suppressed.
func (c *Client) DryRun() bool {
	return c.dryRun
}

type rawSearchResponse struct {
	Total int             `json:"total"`
	Data  json.RawMessage `json:"data"`
}

// Search runs criteria against entity and decodes the matching records into
// out, which must be a pointer to a slice. It returns the server's total.
func (c *Client) Search(ctx context.Context, entity string, criteria Criteria, out any) (int, error) {
	var resp rawSearchResponse
	if err := c.http.Do(ctx, transport.Lookup(transport.PathEscape("/api/search", entity), criteria), &resp); err != nil {
		return 0, err
	}
	if len(resp.Data) > 0 && out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return 0, errors.WrapParse("json", entity+" search", err)
		}
	}
	return resp.Total, nil
}

// Create posts payload as a new entity.
func (c *Client) Create(ctx context.Context, entity string, payload any) error {
	if c.dryRun {
		logging.FromContext(ctx).Info().
			Str("entity", entity).
			Interface("payload", payload).
			Msg("Dry run: skipping create")
		return nil
	}
	if err := c.http.Do(ctx, transport.Post(transport.PathEscape("/api", entity), payload), nil); err != nil {
		return errors.WrapResource("create", entity, "", err)
	}
	return nil
}

// Update applies payload as a partial update to the entity with id.
func (c *Client) Update(ctx context.Context, entity, id string, payload any) error {
	if c.dryRun {
		logging.FromContext(ctx).Info().
			Str("entity", entity).
			Str("id", id).
			Interface("payload", payload).
			Msg("Dry run: skipping update")
		return nil
	}
	if err := c.http.Do(ctx, transport.Patch(transport.PathEscape("/api", entity, id), payload), nil); err != nil {
		return errors.WrapResource("update", entity, id, err)
	}
	return nil
}

// UploadFromURL asks the target to fetch sourceURL into the media shell mediaID.
func (c *Client) UploadFromURL(ctx context.Context, mediaID, fileName, extension, sourceURL string) error {
	if c.dryRun {
		logging.FromContext(ctx).Info().
			Str("media_id", mediaID).
			Str("file_name", fileName+"."+extension).
			Str("url", sourceURL).
			Msg("Dry run: skipping upload")
		return nil
	}
	req := transport.Post(transport.PathEscape("/api/_action/media", mediaID, "upload"), map[string]string{"url": sourceURL})
	req.Query = url.Values{
		"fileName":  []string{fileName},
		"extension": []string{extension},
	}
	if err := c.http.Do(ctx, req, nil); err != nil {
		return errors.WrapResource("upload", EntityMedia, mediaID, err)
	}
	return nil
}

// findOne searches for the first record matching filters. A miss is an
// *errors.NotFoundError keyed by desc.
func findOne[T any](ctx context.Context, c *Client, entity, desc string, filters ...Filter) (*T, error) {
	var found []T
	if _, err := c.Search(ctx, entity, Criteria{Filter: filters, Limit: 1}, &found); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, errors.NewNotFoundError(entity, desc)
	}
	return &found[0], nil
}
