package validation

import (
	"net/http"
	"testing"

	"github.com/deppfellow/ctxword/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsJSONContentType(t *testing.T) {
	assert.True(t, IsJSONContentType("application/json"))
	assert.True(t, IsJSONContentType("application/json; charset=utf-8"))
	assert.True(t, IsJSONContentType("application/problem+json"))

	assert.False(t, IsJSONContentType(""))
	assert.False(t, IsJSONContentType("text/plain"))
	assert.False(t, IsJSONContentType("text/json"))
	assert.False(t, IsJSONContentType("application/x-www-form-urlencoded"))
}

func TestObject_Has(t *testing.T) {
	obj, err := DecodeObject("application/json", []byte(`{"a": null}`))
	require.NoError(t, err)

	assert.True(t, obj.Has("a"))
	assert.False(t, obj.Has("b"))
}

func TestObject_Require(t *testing.T) {
	obj, err := DecodeObject("application/json", []byte(`{"a": null, "c": "x"}`))
	require.NoError(t, err)

	assert.NoError(t, obj.Require("a", "c"))
	assert.EqualError(t, obj.Require("a", "b", "d"), "Required 'b' argument is not present")
}

func TestObject_Int(t *testing.T) {
	obj, err := DecodeObject("application/json", []byte(`{"a": 3, "b": -4, "c": 1e400, "d": true, "e": 9007199254740993.5}`))
	require.NoError(t, err)

	n, err := obj.Int("a")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = obj.Int("b")
	require.NoError(t, err)
	assert.Equal(t, -4, n)

	for _, name := range []string{"c", "d", "e"} {
		_, err = obj.Int(name)
		assert.EqualError(t, err, "Argument '"+name+"' must be an integer")
	}

	_, err = obj.Int("missing")
	assert.EqualError(t, err, "Required 'missing' argument is not present")
}

type sample struct {
	Name  string `json:"name" validate:"required,min=2"`
	Count int    `json:"count" validate:"max=3"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestExtractValidationError(t *testing.T) {
	tests := []struct {
		in   sample
		want string
	}{
		{sample{}, "Required 'name' argument is not present"},
		{sample{Name: "x"}, "Argument 'name' must be at least 2 characters"},
		{sample{Name: "xy", Count: 4}, "Argument 'count' must not exceed 3"},
		{sample{Name: "xy", Kind: "c"}, "Argument 'kind' must be one of: a b"},
	}

	for _, tt := range tests {
		err := extractValidationError(Struct(tt.in))

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, tt.want, httpErr.Message)
	}
}

func TestExtractValidationError_PassesHTTPErrorThrough(t *testing.T) {
	in := errs.NewValidationError("Json expected")
	assert.Same(t, in, extractValidationError(in))
}
