// Package errors provides custom error types for the catalogbridge system.
// The types map onto the migration's failure taxonomy: setup failures abort
// the run, product failures abandon a single product, and API errors carry
// enough context (API, endpoint, status) to re-run a request by hand.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join are re-exported so callers only import one errors package.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Common sentinel errors for the catalogbridge system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthentication indicates that credentials were rejected or could not be obtained
	ErrAuthentication = errors.New("authentication failed")

	// ErrProviderUnavailable indicates that a remote API is temporarily unavailable
	ErrProviderUnavailable = errors.New("api unavailable")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrProductsFailed indicates that a run completed but some products failed
	ErrProductsFailed = errors.New("products failed")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a non-success response (or transport failure) from
// either the source or the target catalog API.
type APIError struct {
	API        string // "source" or "target"
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	req := e.Endpoint
	if e.Method != "" {
		req = e.Method + " " + e.Endpoint
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d) on %s: %s", e.API, e.StatusCode, req, e.Message)
	}
	return fmt.Sprintf("%s API error on %s: %s", e.API, req, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support. A request that got no response because
// a deadline passed matches ErrTimeout.
func (e *APIError) Is(target error) bool {
	if target == ErrTimeout {
		var timeout interface{ Timeout() bool }
		return e.StatusCode == 0 && errors.As(e.Err, &timeout) && timeout.Timeout()
	}
	switch {
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return target == ErrAuthentication
	case e.StatusCode >= 500:
		return target == ErrProviderUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(api string, statusCode int, message string) *APIError {
	return &APIError{
		API:        api,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// SetupError is a failure while resolving run-wide prerequisites (token,
// sales channel, media folder, currency, language, tax table). It aborts
// the whole run before any product is touched.
type SetupError struct {
	Step string
	Err  error
}

// Error implements the error interface
func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed while resolving %s: %v", e.Step, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SetupError) Unwrap() error {
	return e.Err
}

// NewSetupError creates a new SetupError
func NewSetupError(step string, err error) *SetupError {
	return &SetupError{Step: step, Err: err}
}

// ProductError is a failure confined to one product. The run continues.
type ProductError struct {
	ArticleNumber string
	Step          string
	Err           error
}

// Error implements the error interface
func (e *ProductError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("product %s failed at %s: %v", e.ArticleNumber, e.Step, e.Err)
	}
	return fmt.Sprintf("product %s failed: %v", e.ArticleNumber, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ProductError) Unwrap() error {
	return e.Err
}

// NewProductError creates a new ProductError
func NewProductError(articleNumber, step string, err error) *ProductError {
	return &ProductError{ArticleNumber: articleNumber, Step: step, Err: err}
}

// RunFailureError reports a run that completed with failed products.
type RunFailureError struct {
	Failed int
	Total  int
}

// Error implements the error interface
func (e *RunFailureError) Error() string {
	return fmt.Sprintf("%d of %d products failed", e.Failed, e.Total)
}

// Is implements errors.Is support
func (e *RunFailureError) Is(target error) bool {
	return target == ErrProductsFailed
}

// NewRunFailureError creates a new RunFailureError
func NewRunFailureError(failed, total int) *RunFailureError {
	return &RunFailureError{Failed: failed, Total: total}
}

// MediaError is a failure to create or reuse one media asset.
type MediaError struct {
	FileName  string
	SourceURL string
	Err       error
}

// Error implements the error interface
func (e *MediaError) Error() string {
	return fmt.Sprintf("media %s from %s: %v", e.FileName, e.SourceURL, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MediaError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsProviderUnavailable checks if an error indicates API unavailability
func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

// IsSetup reports whether err is a fatal setup-phase failure.
func IsSetup(err error) bool {
	var setupErr *SetupError
	return errors.As(err, &setupErr)
}

// IsRetryable reports whether a failed request is worth repeating:
// rate limiting and gateway-style 5xx responses. 500 itself is treated
// as permanent since the target answers validation faults with it.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "update", "search", "upload"
	Resource  string // "product", "media", "category", ...
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// AuthenticationError represents an authentication/authorization error
type AuthenticationError struct {
	API     string
	Method  string // "client_credentials", "basic"
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.API != "" {
		return fmt.Sprintf("authentication error for %s API (%s): %s", e.API, e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// Helper wrapping functions for common patterns

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   err.Error(),
		Err:       err,
	}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{
		Format:  format,
		File:    file,
		Message: err.Error(),
		Err:     err,
	}
}
