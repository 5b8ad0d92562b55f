package errs

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HTTPError is the main custom error type for API responses.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: lets clients show Message verbatim.
//   - PlainText: write Message as a text/plain body instead of the JSON envelope.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	PlainText bool `json:"-"`
}

// Error returns the Message, so printing/logging the error shows what the client sees.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError.
//
// It does not compare Code/Status, only the type.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

// StatusOf returns the HTTP status err will be answered with, or fallback
// when err is nil.
//
// A handler error has not been written to the response yet when middleware
// sees it, so c.Response().Status would still read 200.
// Reference: https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
func StatusOf(err error, fallback int) int {
	if err == nil {
		return fallback
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code
	}

	return http.StatusInternalServerError
}
