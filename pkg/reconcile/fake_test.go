package reconcile

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogbridge/internal/legacy"
	"github.com/agentstation/catalogbridge/internal/metrics"
	"github.com/agentstation/catalogbridge/internal/target"
	"github.com/agentstation/catalogbridge/internal/transport"
)

const (
	testChannelID  = "channel00000000000000000000000001"
	testCurrencyID = "currency0000000000000000000000001"
	testTax19      = "tax19000000000000000000000000001"
	testTax7       = "tax07000000000000000000000000001"
	testConfigID   = "folderconfig000000000000000000001"
)

// fakeShop serves a minimal target Admin API at /api and a legacy REST API
// at /legacy/api, keeping just enough state to observe convergence.
type fakeShop struct {
	t  *testing.T
	mu sync.Mutex

	products      []target.ProductRef
	salesChannels map[string]string
	folders       map[string]string
	media         map[string]*target.Media
	categories    map[string]string
	productMedia  map[string][]target.ProductMedia
	visibilities  map[string][]target.ProductVisibility
	taxes         []target.Tax

	failUpload         map[string]bool
	failCategoryCreate map[string]bool
	failLookup         map[string]int

	updates   map[string][]map[string]any
	mutations []string

	articles    map[string]map[string]any
	legacyMedia map[int]legacy.Media
	lookups     []string
	onLookup    func(number string)
}

func newFakeShop(t *testing.T) *fakeShop {
	return &fakeShop{
		t:                  t,
		salesChannels:      map[string]string{"Storefront": testChannelID},
		folders:            map[string]string{"Migration": "folder00000000000000000000000001"},
		media:              map[string]*target.Media{},
		categories:         map[string]string{},
		productMedia:       map[string][]target.ProductMedia{},
		visibilities:       map[string][]target.ProductVisibility{},
		taxes:              []target.Tax{{ID: testTax19, TaxRate: 19}, {ID: testTax7, TaxRate: 7}},
		failUpload:         map[string]bool{},
		failCategoryCreate: map[string]bool{},
		failLookup:         map[string]int{},
		updates:            map[string][]map[string]any{},
		articles:           map[string]map[string]any{},
		legacyMedia:        map[int]legacy.Media{},
	}
}

func (f *fakeShop) addProduct(id, number string) {
	f.products = append(f.products, target.ProductRef{ID: id, ProductNumber: number})
}

func (f *fakeShop) addArticle(number string, article map[string]any) {
	f.articles[number] = article
}

func (f *fakeShop) addLegacyMedia(id int, name, path string) {
	f.legacyMedia[id] = legacy.Media{ID: id, Name: name, Description: name + " alt", Path: path}
}

func (f *fakeShop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, "/legacy/api/"):
		f.serveLegacy(w, r)
	case r.URL.Path == "/api/oauth/token":
		writeJSON(w, map[string]any{"token_type": "Bearer", "access_token": "tok", "expires_in": 600})
	case strings.HasPrefix(r.URL.Path, "/api/search/"):
		var c target.Criteria
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&c))
		total, data := f.search(strings.TrimPrefix(r.URL.Path, "/api/search/"), c)
		writeJSON(w, map[string]any{"total": total, "data": data})
	default:
		f.mutations = append(f.mutations, r.Method+" "+r.URL.Path)
		f.mutate(w, r)
	}
}

func (f *fakeShop) serveLegacy(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/legacy/api/")
	switch {
	case strings.HasPrefix(rest, "articles/"):
		number := strings.TrimPrefix(rest, "articles/")
		f.lookups = append(f.lookups, number)
		if f.onLookup != nil {
			f.onLookup(number)
		}
		if status, ok := f.failLookup[number]; ok {
			w.WriteHeader(status)
			return
		}
		article, ok := f.articles[number]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]any{"success": false, "message": "not found"})
			return
		}
		writeJSON(w, map[string]any{"success": true, "data": article})
	case strings.HasPrefix(rest, "media/"):
		id, _ := strconv.Atoi(strings.TrimPrefix(rest, "media/"))
		m, ok := f.legacyMedia[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"success": true, "data": m})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeShop) search(entity string, c target.Criteria) (int, any) {
	eq := func(field string) string {
		for _, fl := range c.Filter {
			if fl.Field == field {
				return fmt.Sprint(fl.Value)
			}
		}
		return ""
	}

	switch entity {
	case target.EntityProduct:
		start := (c.Page - 1) * c.Limit
		if start > len(f.products) {
			start = len(f.products)
		}
		end := start + c.Limit
		if end > len(f.products) {
			end = len(f.products)
		}
		return len(f.products), f.products[start:end]
	case target.EntitySalesChannel:
		if id, ok := f.salesChannels[eq("name")]; ok {
			return 1, []target.SalesChannel{{ID: id, Name: eq("name")}}
		}
	case target.EntityMediaFolder:
		if id, ok := f.folders[eq("name")]; ok {
			return 1, []target.MediaFolder{{ID: id, Name: eq("name")}}
		}
	case target.EntityMediaFolderConfiguration:
		return 1, []target.IDRef{{ID: testConfigID}}
	case target.EntityMedia:
		if eq("fileName") == fmt.Sprint(nil) {
			var shells []string
			for id, m := range f.media {
				if m.FileName == "" && m.MediaFolderID == eq("mediaFolderId") {
					shells = append(shells, id)
				}
			}
			if len(shells) == 0 {
				break
			}
			sort.Strings(shells)
			return 1, []target.Media{*f.media[shells[0]]}
		}
		for _, m := range f.media {
			if m.FileName != "" && m.FileName == eq("fileName") && m.FileExtension == eq("fileExtension") {
				return 1, []target.Media{*m}
			}
		}
	case target.EntityCategory:
		for id, name := range f.categories {
			if name == eq("name") {
				return 1, []target.Category{{ID: id, Name: name}}
			}
		}
	case target.EntityProductMedia:
		links := f.productMedia[eq("productId")]
		return len(links), links
	case target.EntityProductVisibility:
		records := f.visibilities[eq("productId")]
		return len(records), records
	case target.EntityTax:
		return len(f.taxes), f.taxes
	case target.EntityCurrency:
		if eq("isoCode") == "EUR" {
			return 1, []target.Currency{{ID: testCurrencyID, IsoCode: "EUR"}}
		}
	case target.EntityLanguage:
		if eq("locale.code") == "de-DE" {
			return 1, []target.Language{{ID: "language-de", Name: "Deutsch"}}
		}
	}
	return 0, []any{}
}

func (f *fakeShop) mutate(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/"), "/")

	switch {
	case r.Method == http.MethodPost && len(parts) == 4 && parts[0] == "_action" && parts[3] == "upload":
		id := parts[2]
		m, ok := f.media[id]
		fileName := r.URL.Query().Get("fileName")
		if !ok || f.failUpload[fileName] {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, map[string]any{"errors": []any{map[string]any{"detail": "cannot fetch " + fileName}}})
			return
		}
		m.FileName = fileName
		m.FileExtension = r.URL.Query().Get("extension")
	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == target.EntityMedia:
		var m target.MediaCreate
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&m))
		f.media[m.ID] = &target.Media{ID: m.ID, Alt: m.Alt, MediaFolderID: m.MediaFolderID}
	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == target.EntityMediaFolder:
		var body map[string]any
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.folders[body["name"].(string)] = body["id"].(string)
	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == target.EntityCategory:
		var c target.Category
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&c))
		if f.failCategoryCreate[c.Name] {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.categories[c.ID] = c.Name
	case r.Method == http.MethodPatch && len(parts) == 2 && parts[0] == target.EntityMedia:
		var body map[string]any
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.media[parts[1]].Alt = body["alt"].(string)
	case r.Method == http.MethodPatch && len(parts) == 2 && parts[0] == target.EntityProduct:
		f.applyProductUpdate(parts[1], r)
	default:
		f.t.Errorf("unexpected mutation %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeShop) applyProductUpdate(productID string, r *http.Request) {
	var raw map[string]any
	assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&raw))
	f.updates[productID] = append(f.updates[productID], raw)

	encoded, _ := json.Marshal(raw)
	var u target.ProductUpdate
	assert.NoError(f.t, json.Unmarshal(encoded, &u))

	for _, link := range u.Media {
		links := f.productMedia[productID]
		found := false
		for i := range links {
			if links[i].ID == link.ID {
				links[i].MediaID, links[i].Position = link.MediaID, link.Position
				found = true
			}
		}
		if !found {
			link.ProductID = productID
			links = append(links, link)
		}
		f.productMedia[productID] = links
	}

	for _, v := range u.Visibilities {
		records := f.visibilities[productID]
		if v.ID == "" {
			v.ID = target.NewID()
			v.ProductID = productID
			records = append(records, v)
		} else {
			for i := range records {
				if records[i].ID == v.ID {
					records[i].Visibility = v.Visibility
				}
			}
		}
		f.visibilities[productID] = records
	}
}

func (f *fakeShop) lastUpdate(productID string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	updates := f.updates[productID]
	if len(updates) == 0 {
		return nil
	}
	return updates[len(updates)-1]
}

func (f *fakeShop) uploadedMedia() []target.Media {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []target.Media
	for _, m := range f.media {
		if m.FileName != "" {
			out = append(out, *m)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type harnessOption func(*Config, *[]target.Option)

func dryRun() harnessOption {
	return func(c *Config, opts *[]target.Option) {
		c.DryRun = true
		*opts = append(*opts, target.WithDryRun(true))
	}
}

func withConfig(fn func(*Config)) harnessOption {
	return func(c *Config, _ *[]target.Option) {
		fn(c)
	}
}

// newHarness wires real clients against the fake shop.
func newHarness(t *testing.T, shop *fakeShop, opts ...harnessOption) (*Syncer, *metrics.Recorder) {
	t.Helper()
	server := httptest.NewServer(shop)
	t.Cleanup(server.Close)

	noRetry := transport.WithRetry(0, time.Millisecond)
	cfg := Config{
		SalesChannel: "Storefront",
		MediaFolder:  "Migration",
		CustomFields: map[string]string{
			"migration_protected_price": "protectedPrice",
			"migration_parcel_type":     "parcelType",
		},
	}
	targetOpts := []target.Option{target.WithTransport(noRetry)}
	for _, opt := range opts {
		opt(&cfg, &targetOpts)
	}

	tokens := target.NewTokenManager(server.URL, "key", "secret", noRetry)
	recorder := metrics.New()
	s, err := New(
		target.New(server.URL, tokens, targetOpts...),
		legacy.New(server.URL+"/legacy", "user", "key", noRetry),
		cfg,
		WithTokenSource(tokens),
		WithMetrics(recorder),
	)
	require.NoError(t, err)
	return s, recorder
}
