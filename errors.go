// Package vimeo provides a client for the Vimeo REST API: OAuth2
// authorization flows, authenticated requests, and resumable (tus)
// video uploads.
package vimeo

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, vimeo.ErrNotFound) to check.
var (
	ErrBadRequest      = errors.New("vimeo: bad request")
	ErrUnauthorized    = errors.New("vimeo: unauthorized")
	ErrForbidden       = errors.New("vimeo: forbidden")
	ErrNotFound        = errors.New("vimeo: not found")
	ErrConflict        = errors.New("vimeo: conflict")
	ErrTooManyRequests = errors.New("vimeo: rate limited")
	ErrServerError     = errors.New("vimeo: server error")
)

// Sentinel errors for local validation, returned before any HTTP call is made.
var (
	// ErrMissingPath is returned by Request when the options carry no path.
	ErrMissingPath = errors.New("vimeo: request options missing path")

	// ErrMissingVideoURI is returned by Replace when no video URI is given.
	ErrMissingVideoURI = errors.New("vimeo: missing video URI")

	// ErrNoCredentials is returned when neither an access token nor a
	// client ID/secret pair is available to authorize a request.
	ErrNoCredentials = errors.New("vimeo: no credentials configured")

	// ErrUnableToLocateFile is returned (and routed to OnError) when the
	// file to upload cannot be stat'ed.
	ErrUnableToLocateFile = errors.New("vimeo: unable to locate file to upload")

	// ErrAlreadyStarted is returned by UploadHandle.Start on a second call.
	ErrAlreadyStarted = errors.New("vimeo: upload already started")
)

// APIError wraps a sentinel error with the HTTP status code, the request ID
// Vimeo echoes back, and the API error message body for debugging.
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("vimeo: HTTP %d (request-id: %s): %s", e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("vimeo: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
