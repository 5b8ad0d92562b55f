// Package pipelinetest provides an in-memory pipeline.Pipeline for tests.
package pipelinetest

import (
	"context"
	"sync"

	"github.com/deppfellow/ctxword/internal/pipeline"
)

// Call records the arguments of one Find invocation.
type Call struct {
	Sentence string
	Span     pipeline.Span
	Limit    int
}

// Fake answers every Find with Table (or Err) and records the calls it received.
type Fake struct {
	Table   *pipeline.Table
	Err     error
	PingErr error

	// OnFind, when set, runs before the canned answer is returned.
	OnFind func(ctx context.Context, call Call)

	mu    sync.Mutex
	calls []Call
}

// Find records the call and returns the canned answer.
func (f *Fake) Find(ctx context.Context, sentence string, span pipeline.Span, limit int) (*pipeline.Table, error) {
	call := Call{Sentence: sentence, Span: span, Limit: limit}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.OnFind != nil {
		f.OnFind(ctx, call)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Table, nil
}

// Ping returns PingErr.
func (f *Fake) Ping(context.Context) error {
	return f.PingErr
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// SampleTable is a small answer shaped like the model server's output.
func SampleTable() *pipeline.Table {
	table, err := pipeline.NewTable(
		[]pipeline.Field{
			{Name: "word", Type: "string"},
			{Name: "bert", Type: "number"},
			{Name: "normalized", Type: "number"},
			{Name: "ftext", Type: "number"},
			{Name: "score", Type: "number"},
		},
		[]any{"dog", 0.91, 1.0, 0.72, 0.86},
		[]any{"kitten", 0.83, 0.9, 0.81, 0.82},
		[]any{"animal", 0.44, 0.48, 0.65, 0.55},
	)
	if err != nil {
		panic(err)
	}
	return table
}
