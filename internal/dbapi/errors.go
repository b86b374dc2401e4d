package dbapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport marks failures where no usable response came back from the
// backend: dial errors, timeouts, cancelled contexts and undecodable bodies.
var ErrTransport = errors.New("request failed")

// APIError is a well-formed error response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsTransport reports whether err belongs to the transport class.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// Message returns the text shown to users for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}
