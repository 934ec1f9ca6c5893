package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Edneylin/factory-efficiency-analysis/internal/alerts"
	"github.com/Edneylin/factory-efficiency-analysis/internal/api"
	"github.com/Edneylin/factory-efficiency-analysis/internal/auth"
	"github.com/Edneylin/factory-efficiency-analysis/internal/config"
	"github.com/Edneylin/factory-efficiency-analysis/internal/mailer"
	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
	"github.com/Edneylin/factory-efficiency-analysis/internal/store"
	"github.com/Edneylin/factory-efficiency-analysis/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve dashboard static files from this directory; leave empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("efficiency-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"analysis_ttl", cfg.Server.Store.TTL,
		"zero_fill", cfg.Pipeline.ZeroFill,
		"mail_enabled", cfg.Mail.Enabled,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Analysis store with background TTL eviction.
	st := store.New(cfg.Server.Store.TTL)
	go st.Run(ctx)

	// Alerts engine — evaluates rules on every stored analysis.
	alertEngine := alerts.New(cfg.Alerts)

	// Hot-reload alert rules when the config file changes. Other settings
	// (ports, TTL, pipeline options) require a restart.
	go func() {
		err := config.Watch(ctx, *configPath, func(next *config.Config) {
			alertEngine.Reload(next.Alerts)
			slog.Info("alert rules reloaded", "rules", len(next.Alerts.Rules))
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("config watch stopped", "err", err)
		}
	}()

	// Optional report mail delivery.
	var sender api.Sender
	if cfg.Mail.Enabled {
		m, err := mailer.New(mailer.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password(),
			From:     cfg.Mail.From,
			To:       cfg.Mail.To,
		})
		if err != nil {
			slog.Error("failed to configure mailer", "err", err)
			os.Exit(1)
		}
		sender = m
		slog.Info("report mail enabled", "host", cfg.Mail.Host, "recipients", len(cfg.Mail.To))
	}

	// WebSocket hub — broadcasts analysis snapshots to UI clients every 5 seconds.
	hub := ws.New(st, 5*time.Second)
	go hub.Run(ctx)

	opts := pipeline.Options{ZeroFill: cfg.Pipeline.ZeroFillMode()}
	metrics := api.NewMetrics()
	apiHandler := api.New(st, alertEngine, sender, opts, metrics)

	// Combined HTTP server: REST API (behind auth) + WebSocket hub + metrics.
	protected := auth.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
		apiHandler,
	)
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", protected)
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", metrics)

	// Optional: serve the pre-built dashboard from a local directory.
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			// SPA fallback: if the requested file doesn't exist, serve index.html.
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("efficiency-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
