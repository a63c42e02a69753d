package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Generic per-operation messages used when a failure carries no readable text.
const (
	FallbackUpload   = "Failed to upload document"
	FallbackChat     = "Failed to send message. Please try again."
	FallbackEdit     = "Failed to update field. Please try again."
	FallbackFill     = "Failed to fill field. Please try again."
	FallbackComplete = "Failed to complete document. Please try again."
	FallbackDownload = "Failed to download document. Please try again."
)

// APIError is a non-2xx response from the assistant service.
type APIError struct {
	Status  int
	Code    string // the "error" field of the body
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// statusError builds the error for a response whose body is not a JSON error payload.
func statusError(status int) *APIError {
	return &APIError{
		Status:  status,
		Code:    "Network error",
		Message: fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)),
	}
}

// DisplayMessage returns text suitable for the error banner.
// An APIError with a message wins; everything else collapses to fallback.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
