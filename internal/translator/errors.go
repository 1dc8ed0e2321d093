package translator

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialExpired is returned when the service rejects the session
	// token again right after it was refreshed.
	ErrCredentialExpired = errors.New("session token rejected after refresh")
	// ErrMalformedResponse is returned when no translated text can be found
	// in a successful response.
	ErrMalformedResponse = errors.New("malformed translation response")
)

// StatusError reports a non-success HTTP status other than 403.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}
