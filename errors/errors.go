// Package errors defines the gateway's error taxonomy and the mapping
// from errors to HTTP response statuses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConfigError reports required settings that were missing at startup.
// It is fatal and never retried.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// NewConfigError creates a ConfigError for the given missing fields.
func NewConfigError(missing ...string) *ConfigError {
	return &ConfigError{Missing: missing}
}

// UpstreamAuthError is returned when the vendor token endpoint answers
// with a non-success status. Snippet carries a truncated piece of the
// response body for diagnostics.
type UpstreamAuthError struct {
	Status  int
	Snippet string
}

func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("upstream auth failed with status %d: %s", e.Status, e.Snippet)
}

// NewUpstreamAuthError creates an UpstreamAuthError, truncating the
// body snippet to at most 512 bytes.
func NewUpstreamAuthError(status int, body string) *UpstreamAuthError {
	if len(body) > 512 {
		body = body[:512]
	}
	return &UpstreamAuthError{Status: status, Snippet: body}
}

// MalformedAuthResponseError is returned when the token endpoint
// answered 2xx but the payload carried no usable bearer token. Not
// retried: a malformed-response endpoint is unlikely to heal on retry.
type MalformedAuthResponseError struct {
	Reason string
}

func (e *MalformedAuthResponseError) Error() string {
	return fmt.Sprintf("malformed auth response: %s", e.Reason)
}

// NewMalformedAuthResponse creates a MalformedAuthResponseError.
func NewMalformedAuthResponse(reason string) *MalformedAuthResponseError {
	return &MalformedAuthResponseError{Reason: reason}
}

// UpstreamFetchError is returned when a data endpoint exhausted its
// retries or answered a non-retryable status. Status is the last HTTP
// status observed, or zero when no response was received at all.
type UpstreamFetchError struct {
	Status  int
	URL     string
	Snippet string
	cause   error
}

func (e *UpstreamFetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream fetch %s failed: %v", e.URL, e.cause)
	}
	return fmt.Sprintf("upstream fetch %s failed with status %d", e.URL, e.Status)
}

func (e *UpstreamFetchError) Unwrap() error { return e.cause }

// NewUpstreamFetchError creates an UpstreamFetchError carrying the last
// observed status.
func NewUpstreamFetchError(url string, status int, cause error) *UpstreamFetchError {
	return &UpstreamFetchError{Status: status, URL: url, cause: cause}
}

// Truncate bounds a response body snippet to 512 bytes for error
// payloads and logs.
func Truncate(body string) string {
	if len(body) > 512 {
		return body[:512]
	}
	return body
}

// CacheReadError wraps a key-value read failure. Callers treat it as a
// cache miss; it is never fatal.
type CacheReadError struct {
	Key   string
	cause error
}

func (e *CacheReadError) Error() string {
	return fmt.Sprintf("cache read for %q failed: %v", e.Key, e.cause)
}

func (e *CacheReadError) Unwrap() error { return e.cause }

// NewCacheReadError creates a CacheReadError.
func NewCacheReadError(key string, cause error) *CacheReadError {
	return &CacheReadError{Key: key, cause: cause}
}

// CacheWriteError wraps a key-value write failure. Losing a cache write
// only costs an extra upstream call later, so callers log and continue.
type CacheWriteError struct {
	Key   string
	cause error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("cache write for %q failed: %v", e.Key, e.cause)
}

func (e *CacheWriteError) Unwrap() error { return e.cause }

// NewCacheWriteError creates a CacheWriteError.
func NewCacheWriteError(key string, cause error) *CacheWriteError {
	return &CacheWriteError{Key: key, cause: cause}
}

// HTTPStatus derives the response status for an error. Upstream
// statuses in [400,600) pass through unchanged; everything else
// collapses to 502 Bad Gateway.
func HTTPStatus(err error) int {
	var authErr *UpstreamAuthError
	if errors.As(err, &authErr) {
		if authErr.Status >= 400 && authErr.Status < 600 {
			return authErr.Status
		}
		return http.StatusBadGateway
	}
	var fetchErr *UpstreamFetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Status >= 400 && fetchErr.Status < 600 {
			return fetchErr.Status
		}
		return http.StatusBadGateway
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

// Code returns a short machine-readable code for an error, used in the
// JSON error envelope.
func Code(err error) string {
	switch {
	case IsConfigError(err):
		return "config_error"
	case IsUpstreamAuthError(err):
		return "upstream_auth_error"
	case IsMalformedAuthResponse(err):
		return "malformed_auth_response"
	case IsUpstreamFetchError(err):
		return "upstream_fetch_error"
	default:
		return "internal_error"
	}
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsUpstreamAuthError reports whether err is an UpstreamAuthError.
func IsUpstreamAuthError(err error) bool {
	var target *UpstreamAuthError
	return errors.As(err, &target)
}

// IsMalformedAuthResponse reports whether err is a MalformedAuthResponseError.
func IsMalformedAuthResponse(err error) bool {
	var target *MalformedAuthResponseError
	return errors.As(err, &target)
}

// IsUpstreamFetchError reports whether err is an UpstreamFetchError.
func IsUpstreamFetchError(err error) bool {
	var target *UpstreamFetchError
	return errors.As(err, &target)
}

// IsCacheReadError reports whether err is a CacheReadError.
func IsCacheReadError(err error) bool {
	var target *CacheReadError
	return errors.As(err, &target)
}

// IsCacheWriteError reports whether err is a CacheWriteError.
func IsCacheWriteError(err error) bool {
	var target *CacheWriteError
	return errors.As(err, &target)
}
