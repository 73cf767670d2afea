// Command trollyd hosts the sync engine: it opens the durable store,
// builds the subscription hub and serves metrics and health endpoints
// until interrupted. Presentation surfaces embed the engine packages
// directly; this host carries the shared process lifecycle.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alex-morrisonn/trolly/internal/config"
	"github.com/alex-morrisonn/trolly/internal/engine"
	"github.com/alex-morrisonn/trolly/internal/storage/sqlite"
	"github.com/alex-morrisonn/trolly/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	slog.Info("Storage initialized", "database", cfg.DBPath)

	hub := engine.NewHub(store)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		slog.Info("Metrics server starting", "address", cfg.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Metrics server shutdown", "error", err)
	}

	hub.Close()
	if err := store.Close(); err != nil {
		slog.Warn("Storage close", "error", err)
	}
	slog.Info("Shutdown complete")
}
