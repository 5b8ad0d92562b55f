package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/deppfellow/ctxword/internal/config"
	"github.com/deppfellow/ctxword/internal/handler"
	"github.com/deppfellow/ctxword/internal/metrics"
	"github.com/deppfellow/ctxword/internal/pipeline"
	"github.com/deppfellow/ctxword/internal/pipeline/pipelinetest"
	"github.com/deppfellow/ctxword/internal/server"
	"github.com/deppfellow/ctxword/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAssets = fstest.MapFS{
	"openapi.html": {Data: []byte("<html>docs</html>")},
	"openapi.json": {Data: []byte(`{"openapi":"3.0.3"}`)},
}

func newTestRouter(t *testing.T, p pipeline.Pipeline, configure ...func(*config.Config)) *echo.Echo {
	t.Helper()

	cfg := config.DefaultConfig()
	for _, fn := range configure {
		fn(cfg)
	}

	logger := zerolog.Nop()
	s := &server.Server{
		Config:   cfg,
		Logger:   &logger,
		Pipeline: p,
		Metrics:  metrics.New(),
	}

	return NewRouter(s, handler.NewHandlers(s, service.NewServices(s), testAssets), testAssets)
}

func postSynonyms(r *echo.Echo, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/synonyms", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSynonyms_Table(t *testing.T) {
	fake := &pipelinetest.Fake{Table: pipelinetest.SampleTable()}
	r := newTestRouter(t, fake)

	rec := postSynonyms(r, echo.MIMEApplicationJSON, `{"sentence": "the cat sat", "lower": 1, "upper": 1, "limit": 5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON))
	assert.Equal(t, []pipelinetest.Call{{Sentence: "the cat sat", Span: pipeline.Span{Lower: 1, Upper: 1}, Limit: 5}}, fake.Calls())

	var body struct {
		Schema struct {
			Fields []struct {
				Name string `json:"name"`
			} `json:"fields"`
			PandasVersion string `json:"pandas_version"`
		} `json:"schema"`
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "1.4.0", body.Schema.PandasVersion)
	require.Len(t, body.Data, 3)
	assert.Equal(t, "dog", body.Data[0]["word"])
	assert.NotContains(t, body.Data[0], "index")
	assert.True(t, strings.Index(rec.Body.String(), `"word":"dog"`) < strings.Index(rec.Body.String(), `"score":0.86`))
}

func TestSynonyms_Simple(t *testing.T) {
	r := newTestRouter(t, &pipelinetest.Fake{Table: pipelinetest.SampleTable()})

	rec := postSynonyms(r, echo.MIMEApplicationJSON, `{"sentence": "the cat sat", "lower": 1, "upper": 1, "limit": 5, "simple": true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON))
	assert.Equal(t, `["dog","kitten","animal"]`, rec.Body.String())
}

func TestSynonyms_Idempotent(t *testing.T) {
	r := newTestRouter(t, &pipelinetest.Fake{Table: pipelinetest.SampleTable()})
	body := `{"sentence": "the cat sat", "lower": 1, "upper": 1, "limit": 5}`

	first := postSynonyms(r, echo.MIMEApplicationJSON, body)
	second := postSynonyms(r, echo.MIMEApplicationJSON, body)

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestSynonyms_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{"form body", echo.MIMEApplicationForm, "sentence=a", "Json expected"},
		{"no content type", "", `{"sentence":"a","upper":1,"lower":1,"limit":1}`, "Json expected"},
		{"broken json", echo.MIMEApplicationJSON, `{`, "Json expected"},
		{"missing sentence", echo.MIMEApplicationJSON, `{"upper":1,"lower":1,"limit":1}`, "Required 'sentence' argument is not present"},
		{"missing upper", echo.MIMEApplicationJSON, `{"sentence":"a","lower":1,"limit":1}`, "Required 'upper' argument is not present"},
		{"missing lower", echo.MIMEApplicationJSON, `{"sentence":"a","upper":1,"limit":1}`, "Required 'lower' argument is not present"},
		{"missing limit", echo.MIMEApplicationJSON, `{"sentence":"a","upper":1,"lower":1}`, "Required 'limit' argument is not present"},
		{"inverted bounds", echo.MIMEApplicationJSON, `{"sentence":"a","upper":1,"lower":2,"limit":1}`, "Lower bound must be less or equal upper bound"},
		{"missing upper with numeric sentence", echo.MIMEApplicationJSON, `{"sentence": 5, "lower": 1, "limit": 1}`, "Required 'upper' argument is not present"},
		{"missing lower with string upper", echo.MIMEApplicationJSON, `{"sentence":"a","upper":"x","limit":1}`, "Required 'lower' argument is not present"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &pipelinetest.Fake{Table: pipelinetest.SampleTable()}
			r := newTestRouter(t, fake)

			rec := postSynonyms(r, tt.contentType, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
			assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain))
			assert.Empty(t, fake.Calls())
		})
	}
}

func TestSynonyms_OutOfRangeNumbersReachPipeline(t *testing.T) {
	tests := []struct {
		name string
		body string
		want pipelinetest.Call
	}{
		{"negative lower", `{"sentence":"a","upper":1,"lower":-1,"limit":1}`, pipelinetest.Call{Sentence: "a", Span: pipeline.Span{Lower: -1, Upper: 1}, Limit: 1}},
		{"zero limit", `{"sentence":"a","upper":1,"lower":0,"limit":0}`, pipelinetest.Call{Sentence: "a", Span: pipeline.Span{Lower: 0, Upper: 1}, Limit: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &pipelinetest.Fake{Err: errors.New("index out of range")}
			r := newTestRouter(t, fake)

			rec := postSynonyms(r, echo.MIMEApplicationJSON, tt.body)

			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.Equal(t, []pipelinetest.Call{tt.want}, fake.Calls())
		})
	}
}

func TestSynonyms_PipelineFailure(t *testing.T) {
	r := newTestRouter(t, &pipelinetest.Fake{Err: errors.New("model server down")})

	rec := postSynonyms(r, echo.MIMEApplicationJSON, `{"sentence":"a","upper":0,"lower":0,"limit":1}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"BAD_GATEWAY"`)
	assert.NotContains(t, rec.Body.String(), "model server down")
}

func TestSynonyms_RateLimited(t *testing.T) {
	r := newTestRouter(t, &pipelinetest.Fake{Table: pipelinetest.SampleTable()}, func(cfg *config.Config) {
		cfg.Server.RateLimit = 1
		cfg.Server.RateBurst = 1
	})
	body := `{"sentence":"a","upper":0,"lower":0,"limit":1}`

	assert.Equal(t, http.StatusOK, postSynonyms(r, echo.MIMEApplicationJSON, body).Code)
	assert.Equal(t, http.StatusTooManyRequests, postSynonyms(r, echo.MIMEApplicationJSON, body).Code)

	// System routes are never throttled.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSystemRoutes(t *testing.T) {
	r := newTestRouter(t, &pipelinetest.Fake{Table: pipelinetest.SampleTable()})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	docs := get("/docs")
	assert.Equal(t, http.StatusOK, docs.Code)
	assert.Equal(t, "no-cache", docs.Header().Get("Cache-Control"))
	assert.Contains(t, docs.Body.String(), "docs")

	apiDoc := get("/static/openapi.json")
	assert.Equal(t, http.StatusOK, apiDoc.Code)
	assert.JSONEq(t, `{"openapi":"3.0.3"}`, apiDoc.Body.String())

	postSynonyms(r, echo.MIMEApplicationJSON, `{"sentence":"a","upper":0,"lower":0,"limit":1}`)
	m := get("/metrics")
	assert.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), `ctxword_http_requests_total{method="POST",path="/synonyms",status="200"} 1`)

	missing := get("/nope")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), "Route not found")

	assert.NotEmpty(t, get("/status").Header().Get("X-Request-ID"))
}
