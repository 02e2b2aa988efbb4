// ABOUTME: Custom error types for the core feed and search logic
// ABOUTME: Typed errors let callers classify failures with errors.As instead of string matching

package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents a non-success response from a remote host
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// UnsupportedContentError is returned when fetched content is not a syndication document
type UnsupportedContentError struct {
	URL         string
	ContentType string
}

// Error implements the error interface
func (e *UnsupportedContentError) Error() string {
	if e.ContentType == "" {
		return fmt.Sprintf("unsupported feed content at %s", e.URL)
	}
	return fmt.Sprintf("unsupported feed content at %s (%s)", e.URL, e.ContentType)
}

// ParseError wraps a failure to decode a feed document
type ParseError struct {
	URL string
	Err error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse feed %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying decoder error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// IsUnsupportedContent checks if an error is an UnsupportedContentError
func IsUnsupportedContent(err error) bool {
	var contentErr *UnsupportedContentError
	return errors.As(err, &contentErr)
}

// IsParse checks if an error is a ParseError
func IsParse(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
