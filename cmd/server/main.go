package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	gateway "github.com/thedoughmonster/doughmonster-worker-sub001"
	gwapi "github.com/thedoughmonster/doughmonster-worker-sub001/api/echo"
	"github.com/thedoughmonster/doughmonster-worker-sub001/cache"
	redisstore "github.com/thedoughmonster/doughmonster-worker-sub001/cache/redis"
	"github.com/thedoughmonster/doughmonster-worker-sub001/client"
	"github.com/thedoughmonster/doughmonster-worker-sub001/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		fatalLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(logLevel).With().Timestamp().Logger()
	if cfg.LogPretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	log.Logger = logger
	if parseErr != nil {
		logger.Warn().
			Str("configured_log_level", cfg.LogLevel).
			Str("fallback_log_level", logLevel.String()).
			Msg("Invalid LOG_LEVEL configured, defaulting to 'info'")
	}

	logger.Info().
		Str("listen_addr", cfg.ListenAddr).
		Str("vendor_base_url", cfg.VendorBaseURL).
		Bool("redis", cfg.RedisAddr != "").
		Msg("Starting doughmonster gateway")

	// Store selection: Redis when configured, in-memory otherwise.
	var store cache.Store
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = redisstore.NewStore(rdb, cfg.RedisPrefix)
	} else {
		mem := cache.NewMemoryStore()
		defer mem.Close()
		store = mem
	}

	retry := client.RetryPolicy{
		Retries:        cfg.FetchRetries,
		InitialBackoff: time.Duration(cfg.FetchInitialBackoffMs) * time.Millisecond,
		MaxBackoff:     time.Duration(cfg.FetchMaxBackoffMs) * time.Millisecond,
	}
	fetcher := client.NewFetcher(time.Duration(cfg.FetchTimeoutMs) * time.Millisecond)

	tokens := gateway.NewTokenService(gateway.TokenServiceConfig{
		TokenURL:             cfg.TokenURL(),
		ClientID:             cfg.VendorClientID,
		ClientSecret:         cfg.VendorClientSecret,
		RestaurantExternalID: cfg.RestaurantExternalID,
		Retry:                retry,
	}, store, fetcher)

	vendorClient := client.New(client.Config{
		BaseURL: cfg.VendorBaseURL,
		Retry:   retry,
	}, fetcher, tokens, store)

	composer := gateway.NewComposer(gateway.NewCompositionCache(cfg.CompositionCacheCapacity))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	api := gwapi.NewGatewayAPI(vendorClient, composer, cfg.ComposeOrderLimit, cfg.ComposeTimeBudget())
	api.RegisterRoutes(e)

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
