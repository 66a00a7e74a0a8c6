// Package server implements the HTTP API and the serve command.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dtnitsch/linkmeta/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

// ServeAction runs the API until interrupted.
func ServeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pipeline, err := common.NewPipeline(cfg, logger, reg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
	defer pipeline.Close()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: New(pipeline.Registry, reg, logger,
			WithRateLimit(cfg.Server.RatePerSecond, cfg.Server.Burst),
			WithTimeout(cfg.Fetch.Timeout)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "cache_backend", cfg.Cache.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return cli.Exit(fmt.Sprintf("Error: shutdown: %v", err), 2)
	}
	return nil
}
