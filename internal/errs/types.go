package errs

import (
	"net/http"
)

func newHTTPError(status int, message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message:  message,
		Status:   status,
		Override: override,
	}
}

// NewValidationError creates the 400 returned for malformed synonym requests.
//
// The message is written as the whole response body, without the JSON envelope.
func NewValidationError(message string) *HTTPError {
	err := newHTTPError(http.StatusBadRequest, message, true)
	err.Code = "VALIDATION_FAILED"
	err.PlainText = true
	return err
}

// NewNotFoundError creates a 404 Not Found HTTPError.
//
// code optionally replaces the default "NOT_FOUND".
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	err := newHTTPError(http.StatusNotFound, message, override)
	if code != nil {
		err.Code = *code
	}
	return err
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError(message string) *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, message, false)
}

// NewBadGatewayError creates a 502 Bad Gateway HTTPError, used when the
// model server answers with something we cannot use.
func NewBadGatewayError(message string) *HTTPError {
	return newHTTPError(http.StatusBadGateway, message, false)
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, never the internal error.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false)
}
