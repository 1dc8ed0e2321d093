package session

import (
	"errors"
	"fmt"
)

// ErrTokenNotFound is returned when the landing page carries no vqd token.
var ErrTokenNotFound = errors.New("no vqd token found in response")

// TransportError wraps a network-level failure talking to the service.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
