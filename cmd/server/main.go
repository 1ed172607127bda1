package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/zfogg/clipfeed/internal/cache"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/database"
	"github.com/zfogg/clipfeed/internal/handlers"
	"github.com/zfogg/clipfeed/internal/kernel"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"github.com/zfogg/clipfeed/internal/middleware"
	"github.com/zfogg/clipfeed/internal/search"
	"github.com/zfogg/clipfeed/internal/storage"
	"github.com/zfogg/clipfeed/internal/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== clipfeed server starting ===",
		zap.String("environment", cfg.Environment),
	)

	metrics.Initialize()

	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry, cfg.Environment)
	if err != nil {
		logger.FatalWithFields("Failed to initialize tracing", err)
	}

	// Initialize database
	if err := database.Initialize(cfg.Database, cfg.IsDevelopment()); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}

	// Run migrations
	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	// Redis is optional; without it sessions and rate limits stay in process
	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.FatalWithFields("Failed to connect to Redis", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	urls, err := storage.NewResolver(ctx, cfg.Storage)
	cancel()
	if err != nil {
		logger.FatalWithFields("Failed to initialize media storage", err)
	}

	// Elasticsearch is optional; tag suggestions fall back to the database
	var searchClient *search.Client
	if cfg.Search.Enabled() {
		searchClient, err = search.NewClient(cfg.Search, nil)
		if err != nil {
			logger.ErrorWithFields("Elasticsearch unavailable, suggesting tags from the database", err)
			searchClient = nil
		}
	}

	k, err := kernel.New(cfg, kernel.Deps{DB: database.DB, Cache: redisClient, URLs: urls, Search: searchClient})
	if err != nil {
		logger.FatalWithFields("Failed to build services", err)
	}
	k.OnCleanup(func(context.Context) error { return database.Close() })
	if redisClient != nil {
		k.OnCleanup(func(context.Context) error { return redisClient.Close() })
	}
	k.OnCleanup(func(ctx context.Context) error { return shutdownTracer(ctx) })
	k.Start()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.TracingMiddleware(cfg.Telemetry.ServiceName))
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Length", "Content-Type", "Authorization",
		middleware.AudienceHeader, middleware.UserIDHeader, "X-Request-ID",
	}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	h := handlers.NewHandlers(k)
	h.RegisterOperational(r)

	// API routes
	api := r.Group("/api/v1")
	api.Use(middleware.ViewerMiddleware(k.Auth(), cfg.Auth.TrustUserHeader))
	api.Use(middleware.RateLimit(cfg.RateLimit, redisClient))
	h.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("clipfeed listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}

	// Drains the view queue before closing Redis and the database
	if err := k.Cleanup(shutdownCtx); err != nil {
		logger.ErrorWithFields("Cleanup incomplete", err)
	}

	logger.Log.Info("Server exited")
}
