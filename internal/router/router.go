// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes,
// mapping specific paths to their corresponding handlers.
package router

import (
	"io/fs"
	"net/http"

	"github.com/deppfellow/ctxword/internal/handler"
	"github.com/deppfellow/ctxword/internal/middleware"
	"github.com/deppfellow/ctxword/internal/model"
	"github.com/deppfellow/ctxword/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance serving the whole API.
//
// Middleware order matters:
//   - RequestID before tracing and the context logger, which both read it
//   - the New Relic transaction before anything that looks it up
//   - Recover innermost so a panic still reaches logging and metrics as an error
func NewRouter(s *server.Server, h *handler.Handlers, assets fs.FS) *echo.Echo {
	m := middleware.NewMiddlewares(s)

	r := echo.New()
	r.HideBanner = true
	r.HidePort = true
	r.HTTPErrorHandler = m.Global.GlobalErrorHandler

	r.Use(
		m.Global.CORS(),
		m.Global.Secure(),
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		s.Metrics.Middleware(),
		m.Global.Recover(),
		m.Global.BodyLimit(),
	)

	registerSystemRoutes(r, s, h, assets)

	var synonymMiddleware []echo.MiddlewareFunc
	if m.RateLimit.Enabled() {
		synonymMiddleware = append(synonymMiddleware, m.RateLimit.Limit())
	}

	r.POST("/synonyms", handler.HandleJSONBlob(
		h.Synonym.Handler,
		h.Synonym.FindSynonyms,
		http.StatusOK,
		model.NewSynonymRequest,
	), synonymMiddleware...)

	return r
}
