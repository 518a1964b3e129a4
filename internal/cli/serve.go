package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qanooni-ai/qanooni/internal/api/handlers"
	"github.com/qanooni-ai/qanooni/internal/config"
	"github.com/qanooni-ai/qanooni/internal/jobs"
	"github.com/qanooni-ai/qanooni/internal/server"
	"github.com/qanooni-ai/qanooni/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the qanooni API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	indexSvc, llmClient, err := newIndexService(cfg)
	if err != nil {
		return err
	}

	// Warm the index off the request path: hydrate the cache file or run
	// the first build so early searches do not pay the cold-start cost.
	go func() {
		info, err := indexSvc.Warm(ctx)
		if err != nil {
			log.Printf("index warm-up failed (will retry on first access): %v", err)
			telemetry.CaptureError(ctx, err)
			return
		}
		log.Printf("index ready: %d files, %d chunks (source: %s)", info.FileCount, info.ChunkCount, info.Source)
	}()

	var reindexWorker *jobs.ReindexWorker
	if cfg.ReindexInterval > 0 {
		reindexWorker = jobs.NewReindexWorker(indexSvc, cfg.ReindexInterval)
		go reindexWorker.Start(ctx)
		log.Printf("reindex worker started (interval: %v)", cfg.ReindexInterval)
	}

	if !cfg.HasAdminToken() {
		log.Println("QANOONI_ADMIN_TOKEN not set: admin endpoints disabled")
	}

	routerCfg := server.RouterConfig{
		SearchHandler:    handlers.NewSearchHandler(indexSvc),
		ChatHandler:      handlers.NewChatHandler(indexSvc, llmClient),
		TranslateHandler: handlers.NewTranslateHandler(llmClient),
		AudioHandler:     handlers.NewAudioHandler(llmClient),
		AdminHandler:     handlers.NewAdminHandler(indexSvc),
		AdminToken:       cfg.AdminToken,
		AdminRatePerMin:  cfg.AdminRatePerMin,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if reindexWorker != nil {
		reindexWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
