package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogbridge/pkg/constants"
	"github.com/agentstation/catalogbridge/pkg/errors"
)

// isolateEnv clears every variable LoadConfig reads and points HOME at an empty dir.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
	for _, env := range []string{"PAGE_SIZE", "PAGE_PAUSE", "HTTP_TIMEOUT", "MAX_RETRIES", "FORMAT", "VERBOSE", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT"} {
		t.Setenv(env, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateEnv(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultCurrencyISO, config.Currency)
	assert.Equal(t, constants.DefaultLanguageID, config.LanguageID)
	assert.Equal(t, constants.DefaultPageSize, config.PageSize)
	assert.Equal(t, constants.DefaultPagePause, config.PagePause)
	assert.Equal(t, constants.DefaultHTTPTimeout, config.HTTPTimeout)
	assert.Equal(t, constants.MaxRetries, config.MaxRetries)
	assert.Equal(t, DefaultCustomFields, config.CustomFields)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, "stderr", config.LogOutput)
	assert.Empty(t, config.LogLevel, "LogLevel stays empty so -v/-q can apply")
}

func TestLoadConfigEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SW5_API_URL", "https://old.example.com/api")
	t.Setenv("SW5_API_USER", "api")
	t.Setenv("SW5_API_KEY", "legacy-key")
	t.Setenv("SW6_API_URL", "https://new.example.com")
	t.Setenv("SW6_ACCESS_KEY", "SWIA123")
	t.Setenv("SW6_SECRET_KEY", "secret")
	t.Setenv("SALES_CHANNEL_NAME", "Storefront")
	t.Setenv("SW6_MEDIA_FOLDER_NAME", "Migration")
	t.Setenv("SW6_CURRENCY", "CHF")
	t.Setenv("SW6_LOCALE", "de_CH")
	t.Setenv("PAGE_SIZE", "100")
	t.Setenv("PAGE_PAUSE", "1s")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://old.example.com/api", config.SourceURL)
	assert.Equal(t, "api", config.SourceUser)
	assert.Equal(t, "legacy-key", config.SourceKey)
	assert.Equal(t, "https://new.example.com", config.TargetURL)
	assert.Equal(t, "SWIA123", config.TargetAccessKey)
	assert.Equal(t, "secret", config.TargetSecretKey)
	assert.Equal(t, "Storefront", config.SalesChannel)
	assert.Equal(t, "Migration", config.MediaFolder)
	assert.Equal(t, "CHF", config.Currency)
	assert.Equal(t, "de_CH", config.Locale)
	assert.Equal(t, 100, config.PageSize)
	assert.Equal(t, time.Second, config.PagePause)
	assert.Equal(t, "debug", config.envLogLevel)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "catalogbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  url: https://old.example.com
  user: api
  key: legacy-key
target:
  url: https://new.example.com
  access_key: SWIA123
  secret_key: secret
sales_channel: Storefront
media_folder: Migration
currency: usd
max_retries: 1
custom_fields:
  migration_bulky: bulky
`), 0o600))

	t.Setenv("SALES_CHANNEL_NAME", "Headless")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, "https://old.example.com", config.SourceURL)
	assert.Equal(t, "secret", config.TargetSecretKey)
	assert.Equal(t, "Headless", config.SalesChannel, "environment overrides the file")
	assert.Equal(t, "usd", config.Currency)
	assert.Equal(t, 1, config.MaxRetries)
	assert.Equal(t, map[string]string{"migration_bulky": "bulky"}, config.CustomFields)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	isolateEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var configErr *errors.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestValidate(t *testing.T) {
	config := &Config{SourceURL: "https://old.example.com", TargetURL: "https://new.example.com"}

	err := config.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "SALES_CHANNEL_NAME, SW5_API_KEY, SW5_API_USER")
	assert.Contains(t, err.Error(), "SW6_SECRET_KEY")
	assert.NotContains(t, err.Error(), "SW5_API_URL")

	err = config.ValidateTarget()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SW5_")
	assert.Contains(t, err.Error(), "SALES_CHANNEL_NAME")
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "warn"}

	config.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format, "empty flag keeps the configured format")
	assert.Equal(t, "warn", config.LogLevel)

	config.UpdateFromFlags(false, false, false, "json", "trace")
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "trace", config.LogLevel)
}
