package reconcile

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/catalogbridge/internal/metrics"
	"github.com/agentstation/catalogbridge/internal/target"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
)

// CategoryResolver maps category names onto target category ids, creating
// missing categories on first use. Resolved ids are cached for the run.
type CategoryResolver struct {
	api     CategoryAPI
	metrics *metrics.Recorder
	cache   *gocache.Cache
}

// NewCategoryResolver creates a resolver with an empty cache.
func NewCategoryResolver(api CategoryAPI, recorder *metrics.Recorder) *CategoryResolver {
	return &CategoryResolver{
		api:     api,
		metrics: recorder,
		cache:   gocache.New(gocache.NoExpiration, 0),
	}
}

// Resolve returns one reference per name, in input order. Names are matched
// exactly. A category that cannot be created is logged and left out. The
// second return value counts categories created by this call.
func (r *CategoryResolver) Resolve(ctx context.Context, names []string) ([]target.IDRef, int, error) {
	logger := logging.FromContext(ctx)
	refs := make([]target.IDRef, 0, len(names))
	created := 0

	for _, name := range names {
		if id, ok := r.cache.Get(name); ok {
			refs = append(refs, target.IDRef{ID: id.(string)})
			continue
		}

		found, err := r.api.FindCategory(ctx, name)
		if err == nil {
			r.cache.SetDefault(name, found.ID)
			refs = append(refs, target.IDRef{ID: found.ID})
			continue
		}
		if !errors.IsNotFound(err) {
			return nil, created, err
		}

		id := target.NewID()
		if err := r.api.CreateCategory(ctx, id, name); err != nil {
			logger.Warn().Err(err).Str("category", name).Msg("Failed to create category, dropping it")
			continue
		}
		logger.Info().Str("category", name).Str("category_id", id).Msg("Created category")
		r.metrics.CategoryCreated()
		r.cache.SetDefault(name, id)
		refs = append(refs, target.IDRef{ID: id})
		created++
	}
	return refs, created, nil
}
