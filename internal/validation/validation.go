// Package validation contains the logic for validating
// request data.
//
// Request payloads bind themselves from the raw body, so that required
// fields are reported in a fixed order, and then run struct-tag rules
// through the `validator` library. Every failure becomes a single
// plain-text 400 the client can show as is.
package validation

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/deppfellow/ctxword/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"min=1"`)
// - Implement Validate() error that runs Struct(req)
type Validatable interface {
	Validate() error
}

// Request is a payload that decodes itself from the raw request.
//
// Bind gets the request Content-Type and body and returns an *errs.HTTPError
// describing the first problem it finds.
type Request interface {
	Validatable
	Bind(contentType string, body []byte) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names ("lower") instead of Go names ("Lower").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	return v
}

// Struct runs the validator tags of s.
func Struct(s any) error {
	return validate.Struct(s)
}

// BindAndValidate reads the request body into payload and validates it.
//
// Flow:
// 1) payload.Bind(contentType, body) decodes and checks presence/types in order.
// 2) payload.Validate() applies tag rules.
// 3) Returns *errs.HTTPError (400, plain text) for the first failure.
func BindAndValidate(c echo.Context, payload Request) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errs.NewValidationError(MsgJSONExpected)
	}

	if err := payload.Bind(c.Request().Header.Get(echo.HeaderContentType), body); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return extractValidationError(err)
	}

	return nil
}

// extractValidationError converts the first validator failure into the
// client-facing message. Errors that already are *errs.HTTPError pass through.
func extractValidationError(err error) error {
	if httpErr, ok := err.(*errs.HTTPError); ok {
		return httpErr
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errs.NewValidationError(err.Error())
	}

	fe := validationErrors[0]
	var msg string

	switch fe.Tag() {
	case "required":
		return errs.NewValidationError(RequiredMessage(fe.Field()))

	case "min":
		// min tag means:
		// - for strings: minimum length
		// - for numbers: minimum value
		if fe.Kind() == reflect.String {
			msg = fmt.Sprintf("must be at least %s characters", fe.Param())
		} else {
			msg = fmt.Sprintf("must be at least %s", fe.Param())
		}

	case "max":
		if fe.Kind() == reflect.String {
			msg = fmt.Sprintf("must not exceed %s characters", fe.Param())
		} else {
			msg = fmt.Sprintf("must not exceed %s", fe.Param())
		}

	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", fe.Param())

	default:
		// Fallback for tags not explicitly handled above.
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		} else {
			msg = fmt.Sprintf("failed %s", fe.Tag())
		}
	}

	return errs.NewValidationError(fmt.Sprintf("Argument '%s' %s", fe.Field(), msg))
}
