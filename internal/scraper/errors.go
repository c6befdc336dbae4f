package scraper

import (
	"errors"
	"fmt"
)

// APIError is returned by every Client operation that fails.
//
// Status is the HTTP status code of the backend response, or 0 when no
// response was received at all (dial, DNS, TLS, cancelled context).
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("scraper backend unreachable: %s", e.Message)
	}
	return fmt.Sprintf("scraper backend returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsNetwork reports whether the request never got a response.
func (e *APIError) IsNetwork() bool { return e.Status == 0 }

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ErrNoCredential is returned by Worker.Run when neither the caller nor the
// session store supplies a PHP session id.
var ErrNoCredential = errors.New("PHP Session ID is required")

// Fallback messages used when the failure carries no text of its own.
const (
	msgRequestFailed = "Request failed"
	msgNetworkError  = "Network error"
)
