// Command saltbox-mcp-http starts the Saltbox MCP gateway.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saltbox-mcp/internal/config"
	"saltbox-mcp/internal/hints"
	"saltbox-mcp/internal/saltbox"
	"saltbox-mcp/internal/server"
	"saltbox-mcp/internal/tools"
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	client := saltbox.New(cfg.SaltboxURL, cfg.APIKey, cfg.APISecret, nil)

	loader := hints.NewLoader(cfg.HintsDir, log)
	if cfg.HintsDir != "" {
		if err := loader.Load(); err != nil {
			log.Warn("initial hints load failed", "dir", cfg.HintsDir, "error", err)
		}
	}

	registry, err := tools.NewRegistry(log,
		tools.DocumentGroup(client, log),
		tools.SchemaGroup(client, log),
		tools.HelperGroup(client, loader, log),
		tools.BlueprintGroup(client, log),
		tools.DoctypeGroup(client, log),
		tools.WorkflowGroup(client, log),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tool registry error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.HintsDir != "" {
		go func() {
			if err := loader.Watch(ctx); err != nil {
				log.Warn("hints watcher stopped", "error", err)
			}
		}()
	}

	srv := server.New(log, registry, cfg.GatewayToken)
	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info("starting saltbox mcp gateway", "addr", cfg.Addr(), "saltbox_url", cfg.SaltboxURL, "tools", len(registry.List()))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
