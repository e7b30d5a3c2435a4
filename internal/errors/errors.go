package errors

import (
	"errors"
	"net/http"
)

// Sentinel errors forming the adapter failure taxonomy. Callers classify
// with errors.Is and decide on retry, credential refresh, or abort.
var (
	// ErrTransport - the network call could not complete (connection failure, timeout)
	ErrTransport = errors.New("transport error")

	// ErrProtocol - the response could not be parsed into the expected shape
	ErrProtocol = errors.New("protocol error")

	// ErrAuth - the endpoint rejected the authorization credential
	ErrAuth = errors.New("authorization rejected")

	// ErrRateLimited - the endpoint signalled rate limiting and retries were exhausted
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidRequest - the request violated the completion contract before any network call
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound - no provider is registered under the requested model name
	ErrNotFound = errors.New("not found")
)

// FromStatusCode maps an HTTP status code onto the taxonomy sentinel it
// belongs to. 2xx codes map to nil.
func FromStatusCode(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusRequestTimeout:
		return ErrTransport
	default:
		return ErrProtocol
	}
}
