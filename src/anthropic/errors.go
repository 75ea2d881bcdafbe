package anthropic

import (
	"fmt"
	"net/http"

	"github.com/reefbound/diveagent/src/aisdk"
)

// APIError represents an error response from the messages API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsThrottled returns true if this is a rate limit error.
func (e *APIError) IsThrottled() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Type == "rate_limit_error"
}

// Is implements error matching so callers can test with
// errors.Is(err, aisdk.ErrThrottled).
func (e *APIError) Is(target error) bool {
	return target == aisdk.ErrThrottled && e.IsThrottled()
}
