package paper

import (
	"errors"
	"fmt"
)

var (
	// errUnexpectedStatus is wrapped into a RequestError on non-2xx responses.
	errUnexpectedStatus = errors.New("unexpected http status")
	// errUnknownLength is returned when a download response declares no length.
	errUnknownLength = errors.New("response declares no content length")
)

// RequestError describes a failed API request: the URL, the HTTP status code
// when a response was received (zero otherwise) and the underlying cause.
type RequestError struct {
	// URL is the full request URL.
	URL string
	// StatusCode is the HTTP status, zero when the request never completed.
	StatusCode int
	// Err is the transport or protocol level cause.
	Err error
}

// Error renders the failure with as much transport detail as is known.
func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}
