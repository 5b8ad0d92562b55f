package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/ctxword/internal/config"
	"github.com/deppfellow/ctxword/internal/pipeline/pipelinetest"
	"github.com/deppfellow/ctxword/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkHealth(t *testing.T, s *server.Server) (int, healthResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)
	require.NoError(t, NewHealthHandler(s).CheckHealth(c))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func newHealthServer(fake *pipelinetest.Fake) *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config:   config.DefaultConfig(),
		Logger:   &logger,
		Pipeline: fake,
	}
}

func TestCheckHealth_Healthy(t *testing.T) {
	code, body := checkHealth(t, newHealthServer(&pipelinetest.Fake{}))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "local", body.Environment)
	assert.Equal(t, "healthy", body.Checks["pipeline"].Status)
	assert.NotContains(t, body.Checks, "redis")
}

func TestCheckHealth_PipelineDown(t *testing.T) {
	code, body := checkHealth(t, newHealthServer(&pipelinetest.Fake{PingErr: errors.New("connection refused")}))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["pipeline"].Error)
}

func TestCheckHealth_RedisDownStaysHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newHealthServer(&pipelinetest.Fake{})
	s.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer s.Redis.Close()

	code, body := checkHealth(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Checks["redis"].Status)

	mr.Close()

	code, body = checkHealth(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "unhealthy", body.Checks["redis"].Status)
}

func TestCheckHealth_ChecksDisabled(t *testing.T) {
	s := newHealthServer(&pipelinetest.Fake{PingErr: errors.New("down")})
	s.Config.Observability.HealthChecks.Enabled = false

	code, body := checkHealth(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body.Checks)
}
