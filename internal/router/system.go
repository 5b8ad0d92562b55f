package router

import (
	"io/fs"

	"github.com/deppfellow/ctxword/internal/handler"
	"github.com/deppfellow/ctxword/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints that are not part of the API itself:
//  1. Health endpoint
//  2. Docs endpoint (OpenAPI UI)
//  3. Static files (openapi.json and the docs page)
//  4. Prometheus metrics
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers, assets fs.FS) {
	r.GET("/status", h.Health.CheckHealth)

	r.StaticFS("/static", assets)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)

	r.GET("/metrics", s.Metrics.Handler())
}
