// Package model holds the request payloads accepted by the API.
package model

import (
	"github.com/deppfellow/ctxword/internal/errs"
	"github.com/deppfellow/ctxword/internal/pipeline"
	"github.com/deppfellow/ctxword/internal/validation"
)

// SynonymRequest is the body of POST /synonyms.
type SynonymRequest struct {
	Sentence string `json:"sentence"`
	Upper    int    `json:"upper"`
	Lower    int    `json:"lower"`
	Limit    int    `json:"limit"`
	Simple   bool   `json:"simple"`
}

// NewSynonymRequest returns an empty request, ready to be bound.
func NewSynonymRequest() *SynonymRequest {
	return &SynonymRequest{}
}

// Bind decodes the body. Presence is checked in the order sentence, upper,
// lower, then the bounds, then limit; the first problem is returned. Type
// errors on a field are only reported once every earlier field is present.
func (r *SynonymRequest) Bind(contentType string, body []byte) error {
	obj, err := validation.DecodeObject(contentType, body)
	if err != nil {
		return err
	}

	if err := obj.Require("sentence", "upper", "lower"); err != nil {
		return err
	}
	if r.Upper, err = obj.Int("upper"); err != nil {
		return err
	}
	if r.Lower, err = obj.Int("lower"); err != nil {
		return err
	}
	if r.Lower > r.Upper {
		return errs.NewValidationError(validation.MsgBoundOrder)
	}

	if err := obj.Require("limit"); err != nil {
		return err
	}
	if r.Limit, err = obj.Int("limit"); err != nil {
		return err
	}
	if r.Sentence, err = obj.String("sentence"); err != nil {
		return err
	}

	r.Simple = obj.Truthy("simple")
	return nil
}

// Validate runs the struct rules. Negative positions and non-positive limits
// are passed through; the model server decides what they mean.
func (r *SynonymRequest) Validate() error {
	return validation.Struct(r)
}

// Span returns the token positions to replace.
func (r *SynonymRequest) Span() pipeline.Span {
	return pipeline.Span{Lower: r.Lower, Upper: r.Upper}
}
