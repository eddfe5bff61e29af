// Package app provides the application context and dependency management
// for the catalogbridge CLI. It centralizes configuration, logging and the
// construction of the catalog clients each command runs against.
package app

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentstation/catalogbridge/internal/legacy"
	"github.com/agentstation/catalogbridge/internal/metrics"
	"github.com/agentstation/catalogbridge/internal/target"
	"github.com/agentstation/catalogbridge/internal/transport"
	"github.com/agentstation/catalogbridge/pkg/constants"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/reconcile"
)

// App represents the catalogbridge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger      *zerolog.Logger
	fixedLogger bool

	// httpClient overrides the client used for both catalog APIs.
	httpClient *http.Client
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment, .env
// files and the default config file locations. Functional options can
// replace any of it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

func (a *App) transportOptions(recorder *metrics.Recorder) []transport.Option {
	return []transport.Option{
		transport.WithHTTPClient(a.httpClient),
		transport.WithTimeout(a.config.HTTPTimeout),
		transport.WithRetry(a.config.MaxRetries, constants.RetryBackoff),
		transport.WithMetrics(recorder),
	}
}

// TargetClient creates the token manager and target client for the configured shop.
func (a *App) TargetClient(recorder *metrics.Recorder, dryRun bool) (*target.TokenManager, *target.Client) {
	opts := a.transportOptions(recorder)
	tokens := target.NewTokenManager(a.config.TargetURL, a.config.TargetAccessKey, a.config.TargetSecretKey, opts...)
	client := target.New(a.config.TargetURL, tokens,
		target.WithDryRun(dryRun),
		target.WithTransport(opts...),
	)
	return tokens, client
}

// SourceClient creates the legacy catalog client.
func (a *App) SourceClient(recorder *metrics.Recorder) *legacy.Client {
	return legacy.New(a.config.SourceURL, a.config.SourceUser, a.config.SourceKey, a.transportOptions(recorder)...)
}

// SyncConfig builds the engine settings from the application configuration.
func (a *App) SyncConfig(products []string, dryRun bool) reconcile.Config {
	return reconcile.Config{
		SalesChannel: a.config.SalesChannel,
		MediaFolder:  a.config.MediaFolder,
		Currency:     a.config.Currency,
		LanguageID:   a.config.LanguageID,
		Locale:       a.config.Locale,
		PageSize:     a.config.PageSize,
		PagePause:    a.config.PagePause,
		CustomFields: a.config.CustomFields,
		Products:     products,
		DryRun:       dryRun,
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "must not be nil")
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.fixedLogger = logger != nil
		return nil
	}
}

// WithHTTPClient sets the http.Client used for both catalog APIs (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) error {
		a.httpClient = hc
		return nil
	}
}
