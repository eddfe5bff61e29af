package reconcile

import (
	"context"

	"github.com/agentstation/catalogbridge/internal/legacy"
	"github.com/agentstation/catalogbridge/internal/target"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
)

// Failure steps reported in outcomes.
const (
	StepLookup     = "lookup"
	StepState      = "current state"
	StepPrice      = "price"
	StepCategories = "categories"
	StepUpdate     = "update"
)

// run carries the per-run collaborators of the product loop.
type run struct {
	*Syncer
	env        *Environment
	media      *MediaDeduplicator
	categories *CategoryResolver
	prices     *PriceComputer
}

func (s *Syncer) newRun(env *Environment) *run {
	return &run{
		Syncer:     s,
		env:        env,
		media:      NewMediaDeduplicator(s.target, s.source.BaseOrigin()),
		categories: NewCategoryResolver(s.target, s.metrics),
		prices:     NewPriceComputer(env.Taxes, env.CurrencyID),
	}
}

// syncProduct reconciles one target product and applies a single partial
// update. It never returns an error: every failure ends up in the outcome.
func (r *run) syncProduct(ctx context.Context, index int, ref target.ProductRef) Outcome {
	o := Outcome{Index: index, ArticleNumber: ref.ProductNumber, ProductID: ref.ID}
	if ref.ProductNumber == "" {
		o.Kind = OutcomeSkippedNoNumber
		return o
	}

	ctx = logging.WithProduct(logging.WithArticle(ctx, ref.ProductNumber), ref.ID)
	fail := func(step string, err error) Outcome {
		o.Kind = OutcomeFailed
		o.Step = step
		o.Err = errors.NewProductError(ref.ProductNumber, step, err)
		o.Reason = err.Error()
		return o
	}

	src, err := r.source.Lookup(ctx, ref.ProductNumber)
	if err != nil {
		if errors.IsNotFound(err) {
			o.Kind = OutcomeSkippedNotFound
			return o
		}
		return fail(StepLookup, err)
	}

	existingMedia, err := r.target.ProductMedia(ctx, ref.ID)
	if err != nil {
		return fail(StepState, err)
	}
	existingVisibility, err := r.target.ProductVisibilities(ctx, ref.ID)
	if err != nil {
		return fail(StepState, err)
	}

	// price before media, so an unknown tax rate costs no uploads
	price, taxID, err := r.prices.Compute(src.NetPrice, src.TaxRate)
	if err != nil {
		return fail(StepPrice, err)
	}

	processed := r.syncImages(ctx, src, &o)
	mediaLinks, coverID := MergeMedia(existingMedia, processed)

	categories, created, err := r.categories.Resolve(ctx, src.Categories)
	o.CategoriesCreated = created
	if err != nil {
		return fail(StepCategories, err)
	}
	if len(categories) == 0 {
		logging.FromContext(ctx).Info().Msg("No categories resolved, leaving target categories untouched")
	}

	update := &target.ProductUpdate{
		ID:           ref.ID,
		Active:       src.Active,
		CustomFields: r.customFields(src),
		Translations: map[string]target.Translation{
			r.env.LanguageID: {
				Description:     src.Description,
				MetaTitle:       src.MetaTitle,
				MetaDescription: src.MetaDescription,
			},
		},
		Media:        mediaLinks,
		CoverID:      coverID,
		Visibilities: []target.ProductVisibility{ReconcileVisibility(existingVisibility, r.env.SalesChannelID, r.cfg.VisibilityLevel)},
		TaxID:        taxID,
		Categories:   categories,
	}
	if price != nil {
		update.Price = []target.Price{*price}
	}

	if err := r.target.UpdateProduct(ctx, update); err != nil {
		return fail(StepUpdate, err)
	}
	o.Kind = OutcomeUpdated
	return o
}

// syncImages runs media deduplication for every source image in order. A
// failing image is logged and left out; the others still count.
func (r *run) syncImages(ctx context.Context, src *legacy.Product, o *Outcome) []ProcessedImage {
	logger := logging.FromContext(ctx)
	var processed []ProcessedImage

	for idx, img := range src.Images {
		if img.MediaID == 0 {
			o.MediaSkipped++
			r.metrics.Media(string(MediaSkipped))
			logger.Debug().Int("image", idx).Msg("Image has no media id, skipping")
			continue
		}

		m, err := r.source.Media(ctx, img.MediaID)
		if err != nil {
			o.MediaFailed++
			r.metrics.Media(string(MediaFailed))
			logger.Warn().Err(err).Int("image", idx).Int("source_media_id", img.MediaID).Msg("Failed to fetch source media, skipping image")
			continue
		}

		mediaID, action, err := r.media.Sync(ctx, m, idx, r.env.MediaFolderID)
		r.metrics.Media(string(action))
		if err != nil {
			o.MediaFailed++
			logger.Warn().Err(err).Int("image", idx).Msg("Failed to sync image, skipping it")
			continue
		}
		if action == MediaCreated {
			o.MediaCreated++
		} else {
			o.MediaReused++
		}
		processed = append(processed, ProcessedImage{MediaID: mediaID, Position: idx})
	}
	return processed
}

// customFields maps configured attribute keys onto boolean custom fields.
// Absent attributes become false.
func (r *run) customFields(src *legacy.Product) map[string]any {
	if len(r.cfg.CustomFields) == 0 {
		return nil
	}
	fields := make(map[string]any, len(r.cfg.CustomFields))
	for field, attr := range r.cfg.CustomFields {
		fields[field] = Bool(src.Attributes[attr])
	}
	return fields
}
