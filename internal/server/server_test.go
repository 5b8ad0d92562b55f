package server

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/ctxword/internal/config"
	"github.com/deppfellow/ctxword/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loggerPkg "github.com/deppfellow/ctxword/internal/logger"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	logger := zerolog.Nop()
	s, err := New(cfg, &logger, loggerPkg.NewLoggerService(cfg.Observability))
	require.NoError(t, err)
	return s
}

func TestNew_WithoutCache(t *testing.T) {
	s := newTestServer(t, config.DefaultConfig())

	assert.Nil(t, s.Redis)
	assert.NotNil(t, s.Metrics)
	assert.IsType(t, &pipeline.Instrumented{}, s.Pipeline)
}

func TestNew_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.Address = mr.Addr()
	cfg.Pipeline.MaxConcurrency = 1

	s := newTestServer(t, cfg)
	require.NotNil(t, s.Redis)
	assert.IsType(t, &pipeline.Cached{}, s.Pipeline)

	require.NoError(t, s.Shutdown(context.Background()))
}

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Observability = nil

	logger := zerolog.Nop()
	_, err := New(cfg, &logger, nil)
	assert.Error(t, err)
}

func TestStart_RequiresSetup(t *testing.T) {
	s := newTestServer(t, config.DefaultConfig())
	assert.EqualError(t, s.Start(), "HTTP server not initialized")
}
