package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/trendscanner-api/internal/api"
	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/database"
	"github.com/trendscanner-api/internal/imagesearch"
	"github.com/trendscanner-api/internal/llm"
	"github.com/trendscanner-api/internal/metrics"
	"github.com/trendscanner-api/internal/repository"
	"github.com/trendscanner-api/internal/service"
	"github.com/trendscanner-api/internal/trends"
	"github.com/trendscanner-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		boot := logger.Bootstrap()
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info().Msg("Starting TrendScanner API server...")

	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; auto-post runs will fail")
	}
	if cfg.Unsplash.AccessKey == "" {
		log.Warn().Msg("UNSPLASH_ACCESS_KEY is not set; posts will be created without images")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize external clients
	clients := service.Clients{
		Generator: llm.NewClient(cfg.OpenAI, cfg.AutoPost, log),
		Trends:    trends.NewSerpAPIClient(cfg.SerpAPI, log),
	}
	if cfg.Unsplash.AccessKey != "" {
		clients.Images = imagesearch.NewUnsplashClient(cfg.Unsplash, log)
	}

	// Initialize services
	services := service.NewServices(repos, clients, m, cfg, log)

	// Start background scheduler
	services.Scheduler.Start(context.Background())

	// Initialize router
	router := api.NewRouter(services, cfg, log,
		api.WithMetrics(registry),
		api.WithHealthCheck(db.HealthCheck),
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop scheduler
	services.Scheduler.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
