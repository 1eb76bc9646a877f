package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is the typed failure every client call returns. Status is zero for
// transport-level failures that never produced a response.
type Error struct {
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("api request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("api error (status %d)", e.Status)
	}
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.Err }

func statusIs(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}

// IsUnauthorized reports an authentication failure (401).
func IsUnauthorized(err error) bool { return statusIs(err, http.StatusUnauthorized) }

// IsForbidden reports an authorization failure (403).
func IsForbidden(err error) bool { return statusIs(err, http.StatusForbidden) }

// IsNotFound reports a missing resource (404).
func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

// IsValidation reports a validation failure: a 422 or any response carrying
// structured field errors.
func IsValidation(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnprocessableEntity || len(apiErr.Fields) > 0
	}
	return false
}

// FriendlyMessage maps an error to a user-facing message, preferring
// structured field errors, then the backend's message field, then fallback.
func FriendlyMessage(err error, fallback string) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return fallback
	}
	if len(apiErr.Fields) > 0 {
		keys := make([]string, 0, len(apiErr.Fields))
		for k := range apiErr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var msgs []string
		for _, k := range keys {
			msgs = append(msgs, apiErr.Fields[k]...)
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, " ")
		}
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
