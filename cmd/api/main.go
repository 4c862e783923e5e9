package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"archedit/internal/blob"
	"archedit/internal/editor"
	"archedit/internal/http/handlers"
	httpapi "archedit/internal/http/httpapi"
	"archedit/internal/infra"
	"archedit/internal/infra/credentials"
	"archedit/internal/infra/geoip"
	"archedit/internal/providers/genai"
	imageprovider "archedit/internal/providers/image"
	"archedit/internal/storage"
)

const (
	sessionTTL     = 6 * time.Hour
	janitorEvery   = 10 * time.Minute
	startupTimeout = 15 * time.Second
)

func main() {
	_ = godotenv.Load(".env.local", ".env")

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.BlobBackend).Msg("failed to open blob storage")
	}
	kv, closeKV, err := credentials.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.CredentialBackend).Msg("failed to open credential store")
	}
	defer closeKV()
	cancel()

	creds := credentials.NewStore(kv, credentials.WithFallbackKey(cfg.GeminiAPIKey))

	client := genai.NewClient(genai.Options{
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
		Logger:  &logger,
	})
	generator := imageprovider.NewGeminiGenerator(client, cfg.GeminiEditModel, cfg.GeminiUpscaleModel)

	registry := editor.NewRegistry(editor.Deps{
		Generator:     generator,
		Blobs:         blob.NewStore(backend),
		Credentials:   creds,
		WatermarkText: cfg.WatermarkText,
		MaxPixels:     cfg.MaxImagePixels,
		Logger:        &logger,
	})

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	app := handlers.NewApp(*cfg, &logger, registry, creds, backend)
	router := httpapi.NewRouter(app, httpapi.Options{
		CORSOrigins:     cfg.CORSOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		RateLimitPerMin: cfg.RateLimitPerMin,
		GenerateLimit:   cfg.GenerateLimitPerMin,
		CountryLookup:   geoip.Lookup(resolver),
	})

	server := infra.NewHTTPServer(cfg, router)

	runCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go registry.RunJanitor(runCtx, janitorEvery, sessionTTL)

	go func() {
		logger.Info().
			Str("blob_backend", cfg.BlobBackend).
			Str("credential_backend", cfg.CredentialBackend).
			Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
