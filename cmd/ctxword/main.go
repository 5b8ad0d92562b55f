// Command ctxword serves contextual synonym lookups over HTTP.
//
// Configuration comes from CTXWORD_* environment variables (and a .env
// file when present); see internal/config.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/deppfellow/ctxword/internal/config"
	"github.com/deppfellow/ctxword/internal/handler"
	"github.com/deppfellow/ctxword/internal/logger"
	"github.com/deppfellow/ctxword/internal/router"
	"github.com/deppfellow/ctxword/internal/server"
	"github.com/deppfellow/ctxword/internal/service"
	"github.com/deppfellow/ctxword/static"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if err := loggerService.WaitForConnection(); err != nil {
		log.Warn().Err(err).Msg("New Relic did not connect in time, continuing")
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	services := service.NewServices(srv)
	handlers := handler.NewHandlers(srv, services, static.FS)
	r := router.NewRouter(srv, handlers, static.FS)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
		return
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
