package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fpl-tracker/fpl-proxy/config"
	"github.com/fpl-tracker/fpl-proxy/internal/httpserver"
	"github.com/fpl-tracker/fpl-proxy/internal/metrics"
	"github.com/fpl-tracker/fpl-proxy/internal/upstream"
	"github.com/fpl-tracker/fpl-proxy/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.AddSource, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := newUpstreamClient(cfg)
	if err != nil {
		log.Error("Failed to create upstream client", slog.Any("err", err))
		os.Exit(1)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.BufferSize, log)
		collector.Start(ctx)
	}

	router, err := setupRouter(log, cfg, client, collector)
	if err != nil {
		log.Error("Failed to build routes", slog.Any("err", err))
		os.Exit(1)
	}

	srv, err := httpserver.New(cfg.Server.Addr(), router, httpserver.Timeouts{
		Read:     config.Duration(cfg.Server.ReadTimeout),
		Write:    config.Duration(cfg.Server.WriteTimeout),
		Idle:     config.Duration(cfg.Server.IdleTimeout),
		Shutdown: config.Duration(cfg.Server.ShutdownTimeout),
	})
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		log.Info("FPL proxy listening",
			slog.String("addr", srv.Addr()),
			slog.String("upstream", cfg.Upstream.BaseURL),
			slog.Int("league_id", cfg.League.ID))
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting proxy", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func newUpstreamClient(cfg *config.Config) (*upstream.Client, error) {
	return upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.UserAgent, &http.Client{
		Timeout: config.Duration(cfg.Upstream.Timeout),
	})
}
