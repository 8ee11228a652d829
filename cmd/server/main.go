package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/api"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/bootstrap"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/config"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/worker"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	bootstrap.ConfigureLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer deps.Close()

	var reconciler *worker.LedgerReconciler
	if cfg.Reconcile.Enabled {
		reconciler = worker.NewLedgerReconciler(deps.Service, cfg.Reconcile.Interval())
		if err := reconciler.Start(); err != nil {
			log.Printf("Warning: Failed to start ledger reconciler: %v", err)
		}
	}

	router := api.NewRouter(deps.Service, api.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		Health:      api.NewHealthChecker(deps.DB, deps.Redis),
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if reconciler != nil {
		reconciler.Stop()
	}
	log.Println("Server stopped")
}
