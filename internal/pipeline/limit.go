package pipeline

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// Limited bounds the number of concurrent Find calls reaching the wrapped pipeline.
//
// Callers over the limit wait for a free slot until their context is done.
type Limited struct {
	next Pipeline
	sem  *semaphore.Weighted
}

// NewLimited wraps next so that at most n lookups run at once.
func NewLimited(next Pipeline, n int64) *Limited {
	return &Limited{
		next: next,
		sem:  semaphore.NewWeighted(n),
	}
}

// Find waits for a free slot and delegates to the wrapped pipeline.
func (l *Limited) Find(ctx context.Context, sentence string, span Span, limit int) (*Table, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "pipeline: waiting for a free slot")
	}
	defer l.sem.Release(1)

	return l.next.Find(ctx, sentence, span, limit)
}

// Ping checks the wrapped pipeline without taking a slot.
func (l *Limited) Ping(ctx context.Context) error {
	return Ping(ctx, l.next)
}
