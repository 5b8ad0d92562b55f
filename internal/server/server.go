// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - optional redis client backing the pipeline cache
//   - the synonym pipeline and its decorators
//   - Prometheus collectors
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/ctxword/internal/config"
	"github.com/deppfellow/ctxword/internal/metrics"
	"github.com/deppfellow/ctxword/internal/pipeline"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/ctxword/internal/logger"
)

// redisPingTimeout bounds the startup connectivity check.
const redisPingTimeout = 5 * time.Second

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. It holds:
//   - the config
//   - the logger(s)
//   - the redis connection, nil when the cache is disabled
//   - the pipeline shared by every request
//   - an internal *http.Server used to listen and serve requests
type Server struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// Redis is the cache client. Nil when cache.enabled is false.
	Redis *redis.Client

	// Pipeline answers synonym lookups. Built once and shared by all requests.
	Pipeline pipeline.Pipeline

	// Metrics holds the Prometheus collectors exposed on /metrics.
	Metrics *metrics.Metrics

	// httpServer is configured in SetupHTTPServer and started in Start().
	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// It does NOT start the HTTP server directly. That is done in SetupHTTPServer + Start.
//
// The pipeline is assembled from the inside out:
//
//	Client -> Limited (max_concurrency > 0) -> Instrumented -> Cached (cache.enabled)
//
// so cache hits neither wait for a slot nor count as model server calls.
// A Redis connection failure does not block startup; the cache bypasses
// Redis errors on every lookup.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	if cfg == nil || cfg.Observability == nil {
		return nil, errors.New("server: incomplete configuration")
	}

	m := metrics.New()

	var p pipeline.Pipeline = pipeline.NewClient(cfg.Pipeline, logger)
	if cfg.Pipeline.MaxConcurrency > 0 {
		p = pipeline.NewLimited(p, cfg.Pipeline.MaxConcurrency)
	}
	p = pipeline.NewInstrumented(p, m, cfg.Observability.Logging.SlowPipelineThreshold, logger)

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient = newRedisClient(cfg.Cache, logger, loggerService)
		p = pipeline.NewCached(p, redisClient, cfg.Cache.TTL, m, logger)
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Redis:         redisClient,
		Pipeline:      p,
		Metrics:       m,
	}, nil
}

func newRedisClient(cfg config.CacheConfig, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	// This does not actually connect immediately; Redis connections are lazy.
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Redis commands show up in distributed traces when New Relic is enabled.
	if loggerService != nil && loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Str("address", cfg.Address).Msg("failed to connect to Redis, pipeline cache will be bypassed until it is reachable")
	}

	return client
}

// SetupHTTPServer configures the internal net/http server.
//
// The actual router/mux is passed in as handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  s.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
//
// It requires SetupHTTPServer to be called first. A graceful Shutdown makes
// Start return nil.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("pipeline", s.Config.Pipeline.BaseURL).
		Bool("cache", s.Redis != nil).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and its dependencies.
//
// It stops the HTTP server (in-flight requests finish until ctx is done),
// then closes Redis and flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis connection: %w", err)
		}
	}

	if s.LoggerService != nil {
		s.LoggerService.Shutdown()
	}

	return nil
}
