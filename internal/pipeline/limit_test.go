package pipeline_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deppfellow/ctxword/internal/pipeline"
	"github.com/deppfellow/ctxword/internal/pipeline/pipelinetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimited_NeverExceedsBound(t *testing.T) {
	const bound = 2

	var inFlight, peak atomic.Int64
	fake := &pipelinetest.Fake{
		Table: pipelinetest.SampleTable(),
		OnFind: func(context.Context, pipelinetest.Call) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
		},
	}
	limited := pipeline.NewLimited(fake, bound)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := limited.Find(context.Background(), "the cat sat", pipeline.Span{Lower: 1, Upper: 1}, 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, fake.Calls(), 10)
	assert.LessOrEqual(t, peak.Load(), int64(bound))
}

func TestLimited_WaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fake := &pipelinetest.Fake{
		Table: pipelinetest.SampleTable(),
		OnFind: func(context.Context, pipelinetest.Call) {
			close(started)
			<-release
		},
	}
	limited := pipeline.NewLimited(fake, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = limited.Find(context.Background(), "first", pipeline.Span{}, 1)
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := limited.Find(ctx, "second", pipeline.Span{}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-done
	assert.Len(t, fake.Calls(), 1)
}
