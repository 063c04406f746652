package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/use-agent/imdbapi/api"
	"github.com/use-agent/imdbapi/browser"
	"github.com/use-agent/imdbapi/cache"
	"github.com/use-agent/imdbapi/metrics"
	"github.com/use-agent/imdbapi/scraper"
)

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	slog.Info("imdbapi starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"baseURL", cfg.Scraper.BaseURL,
	)

	// ── Metrics ──────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── Browser session (launched eagerly so the first request is fast) ─
	session := browser.NewSession(browser.NewRodBackend(cfg.Browser), slog.Default(), m)
	session.SetTabLimit(cfg.Browser.MaxTabs)
	if err := session.Start(ctx); err != nil {
		// The session relaunches lazily; serve degraded rather than exit.
		slog.Error("browser launch failed", "error", err)
	}
	defer session.Stop()

	sc := scraper.New(session, cfg.Scraper, slog.Default(), m)

	cc := cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	defer cc.Close()
	if cc != nil {
		slog.Info("response cache enabled", "ttl", cfg.Cache.TTL, "maxEntries", cfg.Cache.MaxEntries)
	}

	router := api.NewRouter(sc, session, cfg, cc, time.Now())
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(cfg.Metrics.Port, reg)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if metricsSrv != nil {
		g.Go(metricsSrv.Start)
	}

	// ── Graceful shutdown ────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownGrace)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("imdbapi stopped")
	return nil
}
