// Package constants provides shared constants used throughout catalogbridge.
// This includes timeouts, paging limits, target catalog defaults and file
// permissions that should be consistent across the application.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout bounds every single request to either catalog API
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry constants for transient transport failures
const (
	// MaxRetries is the maximum number of repeated attempts for one request
	MaxRetries = 3

	// RetryBackoff is the initial backoff between attempts
	RetryBackoff = 500 * time.Millisecond

	// MaxRetryBackoff caps the backoff between attempts
	MaxRetryBackoff = 10 * time.Second
)

// Paging constants
const (
	// DefaultPageSize is the number of target products requested per page
	DefaultPageSize = 500

	// DefaultPagePause is the pause between two page requests
	DefaultPagePause = 250 * time.Millisecond
)

// Token constants
const (
	// DefaultTokenLifetime applies when the token endpoint omits expires_in
	DefaultTokenLifetime = 3600 * time.Second

	// TokenExpiryMargin is subtracted from the stated lifetime
	TokenExpiryMargin = 60 * time.Second
)

// Target catalog defaults
const (
	// VisibilityAll is the visibility level meaning "visible in search and listings"
	VisibilityAll = 30

	// DefaultLanguageID is the system language id of a stock target installation
	DefaultLanguageID = "2fbb5fe2e29a4d70aa5854ce7ce3e20b"

	// DefaultCurrencyISO is used when no currency is configured
	DefaultCurrencyISO = "EUR"

	// DefaultImageExtension applies when neither path nor media record names one
	DefaultImageExtension = "jpg"
)

// File permission constants
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Path constants
const (
	// DefaultConfigName is the config file base name searched in $HOME and the working directory
	DefaultConfigName = ".catalogbridge"
)
