package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/deppfellow/ctxword/internal/errs"
)

// Client-facing validation messages.
const (
	MsgJSONExpected = "Json expected"
	MsgBoundOrder   = "Lower bound must be less or equal upper bound"
)

// RequiredMessage is the message for a missing argument.
func RequiredMessage(name string) string {
	return fmt.Sprintf("Required '%s' argument is not present", name)
}

// maxExactFloat is the largest magnitude a float64 holds without losing integer precision.
const maxExactFloat = 1 << 53

func typeError(name, want string) error {
	return errs.NewValidationError(fmt.Sprintf("Argument '%s' must be %s", name, want))
}

// Object is a decoded JSON object whose members are read one at a time, so
// callers decide in which order missing or mistyped arguments are reported.
type Object map[string]json.RawMessage

// DecodeObject checks the content type and decodes body as a JSON object.
// Anything else fails with "Json expected".
func DecodeObject(contentType string, body []byte) (Object, error) {
	if !IsJSONContentType(contentType) {
		return nil, errs.NewValidationError(MsgJSONExpected)
	}

	var obj Object
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, errs.NewValidationError(MsgJSONExpected)
	}
	return obj, nil
}

// Has reports whether name is a member, null values included.
func (o Object) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// Require reports the first of names that is not a member.
func (o Object) Require(names ...string) error {
	for _, name := range names {
		if !o.Has(name) {
			return errs.NewValidationError(RequiredMessage(name))
		}
	}
	return nil
}

func (o Object) member(name string) ([]byte, error) {
	raw, ok := o[name]
	if !ok {
		return nil, errs.NewValidationError(RequiredMessage(name))
	}
	return bytes.TrimSpace(raw), nil
}

// String returns the required string member name.
func (o Object) String(name string) (string, error) {
	raw, err := o.member(name)
	if err != nil {
		return "", err
	}

	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		return "", typeError(name, "a string")
	}
	return s, nil
}

// Int returns the required integer member name. Numbers with a zero
// fractional part, such as 2.0 or 1e2, are accepted.
func (o Object) Int(name string) (int, error) {
	raw, err := o.member(name)
	if err != nil {
		return 0, err
	}

	n, ok := decodeNumber(raw)
	if !ok {
		return 0, typeError(name, "an integer")
	}

	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return 0, typeError(name, "an integer")
	}
	return int(f), nil
}

// Truthy reports whether member name is present and truthy. false, null,
// zero, "", [] and {} are falsy; everything else is truthy.
func (o Object) Truthy(name string) bool {
	raw, ok := o[name]
	if !ok {
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return false
	}

	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

func decodeNumber(raw []byte) (json.Number, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	n, ok := v.(json.Number)
	return n, ok
}
