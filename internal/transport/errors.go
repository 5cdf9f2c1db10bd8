package transport

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetworkUnreachable indicates no HTTP response was received.
	ErrNetworkUnreachable = errors.New("backend unreachable")

	// ErrUnauthorized indicates the backend answered 401.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrServerRejected indicates any other non-2xx response.
	ErrServerRejected = errors.New("request rejected by backend")
)

// APIError is a non-2xx response. Message is the backend's "detail" field
// when present, otherwise "Request failed (<status>)".
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is maps the status onto ErrUnauthorized or ErrServerRejected.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrServerRejected:
		return e.Status != http.StatusUnauthorized
	}
	return false
}

func fallbackMessage(status int) string {
	return fmt.Sprintf("Request failed (%d)", status)
}

// errorCode classifies err for call observers.
func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNetworkUnreachable):
		return "UNREACHABLE"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrServerRejected):
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}
