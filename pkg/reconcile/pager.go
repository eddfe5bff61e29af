package reconcile

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/catalogbridge/internal/target"
	"github.com/agentstation/catalogbridge/pkg/constants"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
)

// CatalogPager lists every target product, pausing between page requests
// so the listing does not trip the target's rate limit.
type CatalogPager struct {
	api      ProductLister
	pageSize int
	limiter  *rate.Limiter
}

// NewCatalogPager creates a pager. A non-positive pageSize falls back to
// the default; a zero pause disables throttling.
func NewCatalogPager(api ProductLister, pageSize int, pause time.Duration) *CatalogPager {
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	limit := rate.Inf
	if pause > 0 {
		limit = rate.Every(pause)
	}
	return &CatalogPager{
		api:      api,
		pageSize: pageSize,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// FetchAll returns every (id, product number) pair. Paging stops once the
// collected count reaches the reported total, or at the first empty page
// even if the total claims more.
func (p *CatalogPager) FetchAll(ctx context.Context) ([]target.ProductRef, error) {
	logger := logging.FromContext(ctx)
	products := []target.ProductRef{}

	for page := 1; ; page++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, errors.Join(errors.ErrCanceled, err)
		}

		res, err := p.api.ListProducts(ctx, page, p.pageSize)
		if err != nil {
			return nil, errors.WrapResource("list", target.EntityProduct, "", err)
		}
		if len(res.Products) == 0 {
			break
		}
		products = append(products, res.Products...)

		logger.Debug().
			Int("page", page).
			Int("fetched", len(products)).
			Int("total", res.Total).
			Msg("Fetched product page")

		if len(products) >= res.Total {
			break
		}
	}
	return products, nil
}
