package pipeline

import (
	"context"
	"time"

	"github.com/deppfellow/ctxword/internal/metrics"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Instrumented records metrics, a New Relic segment and a slow-lookup warning
// for every Find call.
type Instrumented struct {
	next          Pipeline
	metrics       *metrics.Metrics
	slowThreshold time.Duration
	logger        *zerolog.Logger
}

// NewInstrumented wraps next. A zero slowThreshold disables the slow-lookup warning.
func NewInstrumented(next Pipeline, m *metrics.Metrics, slowThreshold time.Duration, logger *zerolog.Logger) *Instrumented {
	return &Instrumented{
		next:          next,
		metrics:       m,
		slowThreshold: slowThreshold,
		logger:        logger,
	}
}

// Find delegates to the wrapped pipeline and records how it went.
func (i *Instrumented) Find(ctx context.Context, sentence string, span Span, limit int) (*Table, error) {
	// StartSegment is nil-safe when the context carries no transaction.
	segment := newrelic.FromContext(ctx).StartSegment("pipeline.find")
	defer segment.End()

	start := time.Now()
	table, err := i.next.Find(ctx, sentence, span, limit)
	elapsed := time.Since(start)

	if err != nil {
		i.metrics.ObservePipeline(metrics.OutcomeError, elapsed)
		return nil, err
	}
	i.metrics.ObservePipeline(metrics.OutcomeSuccess, elapsed)

	if i.slowThreshold > 0 && elapsed > i.slowThreshold {
		i.logger.Warn().
			Str("span", span.String()).
			Int("limit", limit).
			Dur("duration", elapsed).
			Dur("threshold", i.slowThreshold).
			Msg("slow pipeline lookup")
	}

	return table, nil
}

// Ping checks the wrapped pipeline.
func (i *Instrumented) Ping(ctx context.Context) error {
	return Ping(ctx, i.next)
}
