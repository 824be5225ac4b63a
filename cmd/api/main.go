//	@title			Filestore API
//	@version		1.0
//	@description	File ingestion and asset catalog service backed by S3-compatible storage.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/jonfjz/filestore/internal/asset"
	"github.com/jonfjz/filestore/internal/config"
	"github.com/jonfjz/filestore/internal/event"
	"github.com/jonfjz/filestore/internal/file"
	appMiddleware "github.com/jonfjz/filestore/internal/middleware"
	"github.com/jonfjz/filestore/internal/storage"

	_ "github.com/jonfjz/filestore/docs/swagger"
)

func main() {
	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if !cfg.IsProduction() {
		logger = logger.Level(zerolog.DebugLevel)
	}

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StorageUseSSL,
		logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("object storage init failed")
	}

	notifier := event.NewNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer notifier.Close()

	// Wire dependencies: storage → service → handler
	fileSvc := file.NewService(store, notifier, cfg.StoragePublicEndpoint, cfg.StorageBucket, logger)
	fileHandler := file.NewHandler(fileSvc, logger)

	assetSvc := asset.NewService(store, logger)
	assetHandler := asset.NewHandler(assetSvc, logger)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Protected upload/download and catalog endpoints
	r.Route("/files", func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience))
		r.Post("/upload", fileHandler.Upload)
		r.Get("/{key}", fileHandler.GetFile)
	})
	r.Route("/assets", func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience))
		r.Get("/", assetHandler.GetAssets)
	})

	// Public re-serve path, no authentication
	r.Get("/uploads/*", fileHandler.GetPublicFile)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	logger.Info().Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server stopped")
}
