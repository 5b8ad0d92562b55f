// Package pipeline is the boundary to the external NLP pipeline that ranks
// contextual synonym candidates.
//
// The model itself lives in a separate model server; this package only
// knows how to ask it for candidates (Client), how to represent the answer
// (Table), and a few decorators that can be stacked around any Pipeline:
// a Redis result cache, a concurrency limiter and Prometheus instrumentation.
//
// A single Pipeline value is built at startup and shared by every request.
// Implementations must be safe for concurrent use; wrap a non-reentrant
// implementation with NewLimited(p, 1) to serialize access.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
)

// Pipeline finds replacement candidates for the tokens of sentence covered by span.
type Pipeline interface {
	Find(ctx context.Context, sentence string, span Span, limit int) (*Table, error)
}

// Pinger is implemented by pipelines that can report whether they are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks p when it implements Pinger and succeeds otherwise.
func Ping(ctx context.Context, p Pipeline) error {
	if pinger, ok := p.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// Span is an inclusive range of token positions, Lower <= Upper.
//
// On the wire it is the two element array [lower, upper].
type Span struct {
	Lower int
	Upper int
}

// MarshalJSON encodes the span as [lower, upper].
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Lower, s.Upper})
}

// UnmarshalJSON decodes [lower, upper].
func (s *Span) UnmarshalJSON(data []byte) error {
	var bounds [2]int
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("span must be a [lower, upper] pair: %w", err)
	}
	s.Lower, s.Upper = bounds[0], bounds[1]
	return nil
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d]", s.Lower, s.Upper)
}
