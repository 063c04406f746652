package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/imdbapi/api/handler"
	"github.com/use-agent/imdbapi/browser"
	"github.com/use-agent/imdbapi/config"
	"github.com/use-agent/imdbapi/scraper"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "imdbapi",
	Short: "IMDb data extraction over a headless browser",
	Long: `imdbapi - IMDb data extraction over a headless browser

Runs an HTTP API that returns IMDb titles, episodes and search results as
JSON, or performs a single lookup from the command line.

Configuration comes from IMDBAPI_* environment variables, optionally
layered on a TOML file named by IMDBAPI_CONFIG.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		cfg = loaded

		// One-shot commands print JSON on stdout; keep logs off it.
		var out io.Writer = os.Stderr
		if cmd.Name() == "serve" {
			out = os.Stdout
		}
		initLogger(cfg.Log, out)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = handler.Version
	rootCmd.SetVersionTemplate("imdbapi {{.Version}}\n")
}

// initLogger configures slog based on the LogConfig.
func initLogger(lc config.LogConfig, w io.Writer) {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if lc.Format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(h))
}

// startScraper launches a private browser session for a one-shot command.
// The caller must Stop the returned session.
func startScraper(ctx context.Context) (*scraper.Scraper, *browser.Session, error) {
	session := browser.NewSession(browser.NewRodBackend(cfg.Browser), slog.Default(), nil)
	if err := session.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("start browser: %w", err)
	}
	return scraper.New(session, cfg.Scraper, slog.Default(), nil), session, nil
}
