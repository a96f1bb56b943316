package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/toolshed/internal/config"
	"github.com/erazemk/toolshed/internal/web"
	"github.com/erazemk/toolshed/internal/workflow"
)

func serveFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.RefreshSpec, "refresh", cfg.RefreshSpec, "")
	fs.BoolVar(&cfg.SendReturnMetadata, "send-return-metadata", cfg.SendReturnMetadata, "")
}

func runServe(cfg *config.Config, _ []string) error {
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := openApp(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer a.Close()
	slog.Info("local state ready", "path", cfg.DBPath, "api", cfg.APIURL)

	if id, ok := a.session.Current(); ok {
		slog.Info("resuming session", "user", id.Username)
		if err := a.ctrl.Reload(ctx); err != nil {
			slog.Warn("initial reload failed", "error", err)
		}
	}

	if cfg.RefreshSpec != "" {
		refresh, err := workflow.NewAutoRefresh(a.ctrl, cfg.RefreshSpec)
		if err != nil {
			return err
		}
		refresh.Start()
		defer refresh.Stop()
	}

	handler, err := web.NewRouter(&web.Server{
		Session:    a.session,
		Accounts:   a.api,
		Controller: a.ctrl,
		Catalog:    a.catalog,
		Review:     a.review,
		Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	if err != nil {
		return err
	}

	return listen(cfg.Addr, handler)
}

// listen serves handler on addr until SIGINT or SIGTERM.
func listen(addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	slog.Info("server stopped")
	return nil
}
