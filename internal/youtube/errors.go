package youtube

import (
	"errors"
	"fmt"
)

// APIError represents a failure reported by the metadata API
type APIError struct {
	Message       string
	StatusCode    int
	QuotaExceeded bool
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("youtube api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("youtube api error: %s", e.Message)
}

// IsQuotaExceeded reports whether err is a quota-exhaustion error from the
// metadata API. Callers use this to distinguish quota failures from transient
// upstream errors.
func IsQuotaExceeded(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.QuotaExceeded
	}
	return false
}
