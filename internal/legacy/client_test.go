package legacy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogbridge/internal/transport"
	"github.com/agentstation/catalogbridge/pkg/errors"
)

const articleJSON = `{
  "success": true,
  "data": {
    "id": 7,
    "name": "Shirt",
    "description": "short",
    "descriptionLong": "<p>long</p>",
    "metaTitle": "Shirt | Shop",
    "metaDescription": null,
    "active": true,
    "images": [],
    "categories": {"12": {"id": 12, "name": "Tops"}, "3": {"id": 3, "name": "Clothing"}},
    "tax": {"id": 1, "tax": "19.00", "name": "19%"},
    "attribute": {"protectedPrice": "0", "parcelType": 1},
    "mainDetail": {
      "number": "SW10001",
      "images": [{"mediaId": 41, "position": 1}, {"mediaId": null, "position": 2}],
      "prices": [{"customerGroupKey": "EK", "price": 84.03}],
      "attribute": {"protectedPrice": true}
    }
  }
}`

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := New(server.URL, "api-user", "api-key", transport.WithRetry(0, time.Millisecond))
	return server, client
}

func TestLookupNormalizesArticle(t *testing.T) {
	server, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/articles/SW10001", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("useNumberAsId"))
		user, key, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api-user", user)
		assert.Equal(t, "api-key", key)
		_, _ = w.Write([]byte(articleJSON))
	})
	defer server.Close()

	p, err := client.Lookup(context.Background(), "SW10001")
	require.NoError(t, err)

	assert.Equal(t, "SW10001", p.ArticleNumber)
	require.NotNil(t, p.Description)
	assert.Equal(t, "<p>long</p>", *p.Description)
	require.NotNil(t, p.MetaTitle)
	assert.Equal(t, "Shirt | Shop", *p.MetaTitle)
	assert.Nil(t, p.MetaDescription)
	assert.True(t, p.Active)

	// falls back to the main detail images
	require.Len(t, p.Images, 2)
	assert.Equal(t, 41, p.Images[0].MediaID)
	assert.Equal(t, 0, p.Images[1].MediaID)

	assert.Equal(t, []string{"Clothing", "Tops"}, p.Categories)
	require.NotNil(t, p.TaxRate)
	assert.InDelta(t, 19.0, *p.TaxRate, 1e-9)
	require.NotNil(t, p.NetPrice)
	assert.InDelta(t, 84.03, *p.NetPrice, 1e-9)

	assert.Equal(t, true, p.Attributes["protectedPrice"])
	assert.EqualValues(t, 1, p.Attributes["parcelType"])
}

func TestLookupDescriptionFallback(t *testing.T) {
	server, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"description": "short", "descriptionLong": "", "categories": [{"id": 1, "name": "A"}], "tax": {"tax": 7}}}`))
	})
	defer server.Close()

	p, err := client.Lookup(context.Background(), "X")
	require.NoError(t, err)

	require.NotNil(t, p.Description)
	assert.Equal(t, "short", *p.Description)
	assert.Equal(t, []string{"A"}, p.Categories)
	assert.InDelta(t, 7.0, *p.TaxRate, 1e-9)
	assert.Nil(t, p.NetPrice)
	assert.Empty(t, p.Images)
}

func TestLookupNotFound(t *testing.T) {
	server, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success": false, "message": "Product by id SW404 not found"}`))
	})
	defer server.Close()

	p, err := client.Lookup(context.Background(), "SW404")

	assert.Nil(t, p)
	var nf *errors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "SW404", nf.ID)
}

func TestLookupServerErrorIsNotNotFound(t *testing.T) {
	server, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := client.Lookup(context.Background(), "SW1")

	require.Error(t, err)
	assert.False(t, errors.IsNotFound(err))
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "source", apiErr.API)
}

func TestMedia(t *testing.T) {
	server, client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/media/41", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": {"id": 41, "name": "shirt-front", "description": "Front view", "path": "media/image/ab/cd/shirt-front.png", "extension": "png"}}`))
	})
	defer server.Close()

	m, err := client.Media(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, "shirt-front", m.Name)
	assert.Equal(t, "Front view", m.Description)
	assert.Equal(t, "media/image/ab/cd/shirt-front.png", m.Path)
	assert.Equal(t, "png", m.Extension)
}

func TestBaseOrigin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://shop.example/api", "https://shop.example"},
		{"https://shop.example/api/", "https://shop.example"},
		{"https://shop.example", "https://shop.example"},
		{"https://shop.example/shop/api", "https://shop.example/shop"},
		// a host that merely ends in "api" keeps its name
		{"https://myapi", "https://myapi"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseOrigin(tt.in))
		})
	}
}

func TestNewAcceptsOriginOrAPIRoot(t *testing.T) {
	assert.Equal(t, "https://shop.example", New("https://shop.example/api", "u", "k").BaseOrigin())
	assert.Equal(t, "https://shop.example", New("https://shop.example/", "u", "k").BaseOrigin())
}
