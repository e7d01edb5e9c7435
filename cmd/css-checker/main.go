package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lannv1101/css-checker/browser"
	"github.com/lannv1101/css-checker/cache"
	"github.com/lannv1101/css-checker/collect"
	"github.com/lannv1101/css-checker/config"
	"github.com/lannv1101/css-checker/history"
	"github.com/lannv1101/css-checker/web"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// History DB.
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		slog.Error("history db", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Acquisition path: headless Chrome unless configured HTTP-only.
	level := browser.ParseStealthLevel(cfg.Browser.Stealth)
	var source collect.Source
	if level == browser.LevelHTTP {
		source = collect.NewProbe(collect.WithLogger(logger))
		slog.Info("collector: http-only probe (no coverage instrumentation)")
	} else {
		mgr := browser.NewManager(browser.Config{
			RemoteURL:        cfg.Browser.Remote,
			MemoryLimit:      cfg.Browser.MemoryLimit,
			RecycleInterval:  cfg.Browser.RecycleInterval.Std(),
			BlockedResources: cfg.Browser.Block,
			Stealth:          level,
			XvfbDisplay:      cfg.Browser.XvfbDisplay,
			Logger:           logger,
		})
		if _, err := mgr.Start(ctx); err != nil {
			slog.Error("browser start", "error", err)
			os.Exit(1)
		}
		defer mgr.Close()

		source = collect.NewCollector(mgr, collect.Options{
			Stealth:     level,
			NavTimeout:  cfg.Browser.NavTimeout.Std(),
			NavRetries:  cfg.Browser.NavRetries,
			NavBackoff:  cfg.Browser.NavBackoff.Std(),
			SettleDelay: cfg.Browser.SettleDelay.Std(),
			Logger:      logger,
		})
	}

	results := cache.New(cache.WithTTL(cfg.CacheTTL.Std()))
	svc := web.NewService(source, results, store, logger)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}
