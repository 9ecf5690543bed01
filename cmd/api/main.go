package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/scutta-ladder/internal/app"
	"github.com/riskibarqy/scutta-ladder/internal/config"
	"github.com/riskibarqy/scutta-ladder/internal/observability"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api exited", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg config.Config, logger *logging.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "init uptrace")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := shutdownTracing(flushCtx); shutdownErr != nil {
			logger.Warn("uptrace shutdown failed", "error", shutdownErr)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "init pyroscope")
	}
	defer func() {
		if stopErr := stopProfiler(); stopErr != nil {
			logger.Warn("pyroscope stop failed", "error", stopErr)
		}
	}()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "build app")
	}
	defer func() {
		err = errors.CombineErrors(err, application.Close())
	}()

	srv, err := application.NewHTTPServer()
	if err != nil {
		return err
	}
	servers := []*http.Server{srv}
	if pprofSrv := observability.NewPprofServer(cfg); pprofSrv != nil {
		servers = append(servers, pprofSrv)
	}

	serveErr := make(chan error, len(servers))
	var wg conc.WaitGroup
	for _, s := range servers {
		wg.Go(func() {
			logger.Info("http server starting", "addr", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- errors.Wrapf(err, "serve %s", s.Addr)
			}
		})
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-serveErr:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, s := range servers {
		if shutdownErr := s.Shutdown(shutdownCtx); shutdownErr != nil {
			err = errors.CombineErrors(err, errors.Wrapf(shutdownErr, "shutdown %s", s.Addr))
		}
	}
	wg.Wait()

	logger.Info("http server stopped")
	return err
}
