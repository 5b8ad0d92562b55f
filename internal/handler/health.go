package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/ctxword/internal/middleware"
	"github.com/deppfellow/ctxword/internal/pipeline"
	"github.com/deppfellow/ctxword/internal/server"
	"github.com/labstack/echo/v4"
)

// Health check names, as listed in observability.health_checks.checks.
const (
	checkPipeline = "pipeline"
	checkRedis    = "redis"
)

// HealthHandler exposes the endpoint monitors and load balancers use to
// verify the service is alive and its dependencies are reachable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// checkResult is one entry of the "checks" map.
type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// healthResponse is the body of /status.
type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth returns system health status and dependency checks.
//
// The model server check decides the overall status: 200 when it answers,
// 503 otherwise. Redis only backs the cache, so a failing Redis is reported
// but keeps the service healthy.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config.Observability.HealthChecks

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]checkResult),
	}

	isHealthy := true

	if cfg.Enabled && h.server.Config.Observability.HasCheck(checkPipeline) {
		result, err := h.runCheck(c.Request().Context(), cfg.Timeout, func(ctx context.Context) error {
			return pipeline.Ping(ctx, h.server.Pipeline)
		})
		response.Checks[checkPipeline] = result

		if err != nil {
			isHealthy = false
			logger.Error().Err(err).Str("response_time", result.ResponseTime).Msg("pipeline health check failed")
			h.recordCheckError(checkPipeline, err)
		}
	}

	if cfg.Enabled && h.server.Redis != nil && h.server.Config.Observability.HasCheck(checkRedis) {
		result, err := h.runCheck(c.Request().Context(), cfg.Timeout, func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
		response.Checks[checkRedis] = result

		if err != nil {
			logger.Warn().Err(err).Str("response_time", result.ResponseTime).Msg("redis health check failed, cache is bypassed")
			h.recordCheckError(checkRedis, err)
		}
	}

	if !isHealthy {
		response.Status = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) runCheck(parent context.Context, timeout time.Duration, check func(ctx context.Context) error) (checkResult, error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	checkStart := time.Now()
	err := check(ctx)

	result := checkResult{
		Status:       "healthy",
		ResponseTime: time.Since(checkStart).String(),
	}
	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
	}
	return result, err
}

func (h *HealthHandler) recordCheckError(checkType string, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}

	h.server.LoggerService.GetApplication().RecordCustomEvent(
		"HealthCheckError",
		map[string]interface{}{
			"check_type":    checkType,
			"operation":     "health_check",
			"error_type":    checkType + "_unhealthy",
			"error_message": err.Error(),
		},
	)
}
