package inference

import (
	"fmt"
)

// StatusError reports a non-2xx answer from the upstream endpoint.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s upstream returned status %d: %s", e.Provider, e.StatusCode, Truncate(e.Body, 200))
}

// NewStatusError creates a StatusError, keeping at most 2 KiB of the body.
func NewStatusError(provider string, status int, body []byte) *StatusError {
	return &StatusError{
		Provider:   provider,
		StatusCode: status,
		Body:       Truncate(string(body), 2048),
	}
}

// Truncate shortens s to maxLen bytes, marking the cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
