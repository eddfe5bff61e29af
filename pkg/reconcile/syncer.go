package reconcile

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/agentstation/catalogbridge/internal/matcher"
	"github.com/agentstation/catalogbridge/internal/metrics"
	"github.com/agentstation/catalogbridge/internal/target"
	"github.com/agentstation/catalogbridge/internal/transport"
	"github.com/agentstation/catalogbridge/pkg/constants"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
)

// Config holds the run-wide settings of a migration.
type Config struct {
	// SalesChannel and MediaFolder are looked up by name.
	SalesChannel string
	MediaFolder  string

	// Currency is an ISO 4217 code.
	Currency string

	// LanguageID keys the translation bundle. When Locale is set the id is
	// resolved from the target by locale code instead.
	LanguageID string
	Locale     string

	PageSize        int
	PagePause       time.Duration
	VisibilityLevel int

	// CustomFields maps target custom field names onto legacy attribute keys.
	CustomFields map[string]string

	// Products restricts the run to these article numbers or glob patterns
	// when non-empty.
	Products []string

	DryRun bool
}

// Environment is what setup resolved on the target. Every product update depends on it.
type Environment struct {
	SalesChannelID     string
	MediaFolderID      string
	MediaFolderCreated bool
	CurrencyID         string
	LanguageID         string
	Taxes              *TaxTable
}

// Syncer runs a migration: setup, listing, then one reconciliation per product.
type Syncer struct {
	target  TargetAPI
	source  SourceAPI
	tokens  transport.TokenSource
	metrics *metrics.Recorder
	cfg     Config
	now     func() time.Time

	selection *matcher.Set
}

// Option configures a Syncer.
type Option func(*Syncer) error

// WithTokenSource checks the target token first thing during setup, so bad
// credentials abort the run before any catalog call.
func WithTokenSource(tokens transport.TokenSource) Option {
	return func(s *Syncer) error {
		s.tokens = tokens
		return nil
	}
}

// WithMetrics records outcomes in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Syncer) error {
		s.metrics = r
		return nil
	}
}

// WithClock replaces the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "must not be nil")
		}
		s.now = now
		return nil
	}
}

// New creates a Syncer. Missing sales channel or media folder names are rejected.
func New(targetAPI TargetAPI, sourceAPI SourceAPI, cfg Config, opts ...Option) (*Syncer, error) {
	if strings.TrimSpace(cfg.SalesChannel) == "" {
		return nil, errors.NewValidationError("sales_channel", cfg.SalesChannel, "is required")
	}
	if strings.TrimSpace(cfg.MediaFolder) == "" {
		return nil, errors.NewValidationError("media_folder", cfg.MediaFolder, "is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = constants.DefaultCurrencyISO
	}
	if cfg.LanguageID == "" && cfg.Locale == "" {
		cfg.LanguageID = constants.DefaultLanguageID
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = constants.DefaultPageSize
	}
	if cfg.VisibilityLevel == 0 {
		cfg.VisibilityLevel = constants.VisibilityAll
	}
	selection, err := matcher.New(cfg.Products)
	if err != nil {
		return nil, err
	}

	s := &Syncer{
		target: targetAPI,
		source: sourceAPI,
		cfg:    cfg,
		now:    time.Now,

		selection: selection,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Setup resolves the run's prerequisites. Any failure is a *errors.SetupError
// and no product may be touched after it.
func (s *Syncer) Setup(ctx context.Context) (*Environment, error) {
	ctx = logging.WithOperation(ctx, "setup")
	logger := logging.FromContext(ctx)
	env := &Environment{}

	if s.tokens != nil {
		if _, err := s.tokens.EnsureValid(ctx); err != nil {
			return nil, errors.NewSetupError("access token", err)
		}
	}

	channel, err := s.target.FindSalesChannel(ctx, s.cfg.SalesChannel)
	if err != nil {
		return nil, errors.NewSetupError("sales channel", err)
	}
	env.SalesChannelID = channel.ID

	folderID, created, err := s.resolveMediaFolder(ctx)
	if err != nil {
		return nil, errors.NewSetupError("media folder", err)
	}
	env.MediaFolderID, env.MediaFolderCreated = folderID, created

	currency, err := s.target.FindCurrency(ctx, strings.ToUpper(s.cfg.Currency))
	if err != nil {
		return nil, errors.NewSetupError("currency", err)
	}
	env.CurrencyID = currency.ID

	languageID, err := s.resolveLanguage(ctx)
	if err != nil {
		return nil, errors.NewSetupError("language", err)
	}
	env.LanguageID = languageID

	taxes, err := s.target.Taxes(ctx)
	if err != nil {
		return nil, errors.NewSetupError("tax table", err)
	}
	env.Taxes = NewTaxTable(taxes)
	if env.Taxes.Len() == 0 {
		logger.Warn().Msg("Target has no tax rules; every product with a tax rate will fail")
	}

	logger.Info().
		Str("sales_channel_id", env.SalesChannelID).
		Str("media_folder_id", env.MediaFolderID).
		Bool("media_folder_created", env.MediaFolderCreated).
		Str("currency_id", env.CurrencyID).
		Str("language_id", env.LanguageID).
		Int("tax_rates", env.Taxes.Len()).
		Msg("Setup complete")
	return env, nil
}

func (s *Syncer) resolveMediaFolder(ctx context.Context) (string, bool, error) {
	folder, err := s.target.FindMediaFolder(ctx, s.cfg.MediaFolder)
	if err == nil {
		return folder.ID, false, nil
	}
	if !errors.IsNotFound(err) {
		return "", false, err
	}

	configurationID, err := s.target.DefaultMediaFolderConfiguration(ctx)
	if err != nil {
		return "", false, err
	}
	id, err := s.target.CreateMediaFolder(ctx, s.cfg.MediaFolder, configurationID)
	if err != nil {
		return "", false, err
	}
	logging.FromContext(ctx).Info().
		Str("media_folder", s.cfg.MediaFolder).
		Str("media_folder_id", id).
		Msg("Created media folder")
	return id, true, nil
}

func (s *Syncer) resolveLanguage(ctx context.Context) (string, error) {
	if s.cfg.Locale == "" {
		return s.cfg.LanguageID, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(s.cfg.Locale, "_", "-"))
	if err != nil {
		return "", errors.NewValidationError("locale", s.cfg.Locale, err.Error())
	}
	lang, err := s.target.FindLanguageByLocale(ctx, tag.String())
	if err != nil {
		return "", err
	}
	return lang.ID, nil
}

// Run performs the whole migration. A setup or listing failure returns an
// error and no result. Product failures are recorded in the result and do
// not stop the run. On cancellation the loop stops between products and the
// partial result is returned with an error wrapping errors.ErrCanceled.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	start := s.now()
	logger := logging.FromContext(ctx)

	env, err := s.Setup(ctx)
	if err != nil {
		return nil, err
	}

	products, err := NewCatalogPager(s.target, s.cfg.PageSize, s.cfg.PagePause).FetchAll(ctx)
	if err != nil {
		return nil, errors.NewSetupError("product listing", err)
	}
	products = s.filter(ctx, products)
	logger.Info().Int("products", len(products)).Bool("dry_run", s.cfg.DryRun).Msg("Starting product reconciliation")

	result := &Result{
		Outcomes: make([]Outcome, 0, len(products)),
		Metadata: ResultMetadata{
			StartTime:      start,
			DryRun:         s.cfg.DryRun,
			SalesChannelID: env.SalesChannelID,
			MediaFolderID:  env.MediaFolderID,
			CurrencyID:     env.CurrencyID,
			LanguageID:     env.LanguageID,
		},
	}

	r := s.newRun(env)
	for i, ref := range products {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		o := r.syncProduct(ctx, i+1, ref)
		result.Add(o)
		s.metrics.Product(string(o.Kind))
		logOutcome(ctx, o, len(products))
	}

	result.Metadata.EndTime = s.now()
	result.Metadata.Duration = result.Metadata.EndTime.Sub(start)
	logger.Info().
		Int("updated", result.Stats.Updated).
		Int("skipped_not_found", result.Stats.SkippedNotFound).
		Int("skipped_no_number", result.Stats.SkippedNoNumber).
		Int("failed", result.Stats.Failed).
		Dur("duration", result.Metadata.Duration).
		Msg(result.Summary())

	if result.Interrupted {
		return result, errors.Join(errors.ErrCanceled, ctx.Err())
	}
	return result, nil
}

// filter applies the Products restriction, keeping catalog order.
func (s *Syncer) filter(ctx context.Context, products []target.ProductRef) []target.ProductRef {
	if s.selection.Empty() {
		return products
	}

	seen := make(map[string]bool)
	var kept []target.ProductRef
	for _, p := range products {
		if s.selection.Match(p.ProductNumber) {
			seen[p.ProductNumber] = true
			kept = append(kept, p)
		}
	}
	for _, n := range s.selection.Exact() {
		if !seen[n] {
			logging.FromContext(ctx).Warn().Str("article_number", n).Msg("Requested product is not in the target catalog")
		}
	}
	return kept
}

func logOutcome(ctx context.Context, o Outcome, total int) {
	logger := logging.FromContext(ctx)
	event := logger.Info()
	msg := "Product updated"
	switch o.Kind {
	case OutcomeSkippedNotFound:
		msg = "Product not found in source, skipping"
	case OutcomeSkippedNoNumber:
		event = logger.Warn()
		msg = "Product has no product number, skipping"
	case OutcomeFailed:
		event = logger.Error().Err(o.Err).Str("step", o.Step)
		msg = "Product update failed"
	}
	event.
		Int("index", o.Index).
		Int("total", total).
		Str("article_number", o.ArticleNumber).
		Str("product_id", o.ProductID).
		Str("outcome", string(o.Kind)).
		Msg(msg)
}
