package app

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/catalogbridge/pkg/constants"
	"github.com/agentstation/catalogbridge/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Source catalog (legacy API, basic auth)
	SourceURL  string
	SourceUser string
	SourceKey  string

	// Target catalog (OAuth client credentials)
	TargetURL       string
	TargetAccessKey string
	TargetSecretKey string

	// Run settings
	SalesChannel string
	MediaFolder  string
	Currency     string
	LanguageID   string
	Locale       string
	PageSize     int
	PagePause    time.Duration
	HTTPTimeout  time.Duration
	MaxRetries   int
	CustomFields map[string]string

	// Logging configuration
	LogLevel    string
	LogFormat   string
	LogOutput   string
	envLogLevel string
}

// envBindings maps config keys onto the environment variable names the
// migration has always been configured with.
var envBindings = map[string]string{
	"source.url":        "SW5_API_URL",
	"source.user":       "SW5_API_USER",
	"source.key":        "SW5_API_KEY",
	"target.url":        "SW6_API_URL",
	"target.access_key": "SW6_ACCESS_KEY",
	"target.secret_key": "SW6_SECRET_KEY",
	"sales_channel":     "SALES_CHANNEL_NAME",
	"media_folder":      "SW6_MEDIA_FOLDER_NAME",
	"currency":          "SW6_CURRENCY",
	"language_id":       "SW6_LANGUAGE_ID",
	"locale":            "SW6_LOCALE",
}

// DefaultCustomFields maps target custom fields onto legacy attribute keys.
var DefaultCustomFields = map[string]string{
	"migration_protected_price": "protectedPrice",
	"migration_parcel_type":     "parcelType",
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.catalogbridge.yaml or ./.catalogbridge.yaml)
// 5. Defaults
//
// An explicit configFile must exist and parse. The default locations are optional.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	if err := bindEnv(v); err != nil {
		return nil, err
	}
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config file", "could not be read", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		SourceURL:  v.GetString("source.url"),
		SourceUser: v.GetString("source.user"),
		SourceKey:  v.GetString("source.key"),

		TargetURL:       v.GetString("target.url"),
		TargetAccessKey: v.GetString("target.access_key"),
		TargetSecretKey: v.GetString("target.secret_key"),

		SalesChannel: v.GetString("sales_channel"),
		MediaFolder:  v.GetString("media_folder"),
		Currency:     v.GetString("currency"),
		LanguageID:   v.GetString("language_id"),
		Locale:       v.GetString("locale"),
		PageSize:     v.GetInt("page_size"),
		PagePause:    v.GetDuration("page_pause"),
		HTTPTimeout:  v.GetDuration("http_timeout"),
		MaxRetries:   v.GetInt("max_retries"),
		CustomFields: v.GetStringMapString("custom_fields"),

		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
		envLogLevel: os.Getenv("LOG_LEVEL"),
	}

	if len(config.CustomFields) == 0 {
		config.CustomFields = DefaultCustomFields
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("currency", constants.DefaultCurrencyISO)
	v.SetDefault("language_id", constants.DefaultLanguageID)
	v.SetDefault("page_size", constants.DefaultPageSize)
	v.SetDefault("page_pause", constants.DefaultPagePause)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("max_retries", constants.MaxRetries)
}

// bindEnv explicitly binds the nested keys whose env names don't follow the key path.
func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return errors.NewConfigError("environment", "failed to bind "+env, err)
		}
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// ValidateTarget reports the missing settings needed to talk to the target catalog.
func (c *Config) ValidateTarget() error {
	return missing(map[string]string{
		"SW6_API_URL":           c.TargetURL,
		"SW6_ACCESS_KEY":        c.TargetAccessKey,
		"SW6_SECRET_KEY":        c.TargetSecretKey,
		"SALES_CHANNEL_NAME":    c.SalesChannel,
		"SW6_MEDIA_FOLDER_NAME": c.MediaFolder,
	})
}

// Validate reports every missing setting a full migration needs.
func (c *Config) Validate() error {
	return missing(map[string]string{
		"SW5_API_URL":           c.SourceURL,
		"SW5_API_USER":          c.SourceUser,
		"SW5_API_KEY":           c.SourceKey,
		"SW6_API_URL":           c.TargetURL,
		"SW6_ACCESS_KEY":        c.TargetAccessKey,
		"SW6_SECRET_KEY":        c.TargetSecretKey,
		"SALES_CHANNEL_NAME":    c.SalesChannel,
		"SW6_MEDIA_FOLDER_NAME": c.MediaFolder,
	})
}

func missing(required map[string]string) error {
	var names []string
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return errors.NewConfigError("settings", "missing required settings: "+strings.Join(names, ", "), nil)
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
