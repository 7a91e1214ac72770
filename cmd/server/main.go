package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"orvann/backend/internal/cache"
	"orvann/backend/internal/config"
	"orvann/backend/internal/httpapi"
	"orvann/backend/internal/service"
	"orvann/backend/internal/store/postgres"
	"orvann/backend/internal/store/sqlite"
	"orvann/backend/internal/store/sqlstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Logger = newLogger(cfg, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	repo, backend, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", backend).Msg("repository unavailable")
	}
	closers = append(closers, repo.Close)
	if err := repo.EnsurePartners(ctx, cfg.PartnerList()); err != nil {
		log.Fatal().Err(err).Msg("seed partners")
	}
	log.Info().Str("backend", backend).Msg("repository ready")

	reports := cache.ReportCache(cache.NoopReportCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using noop report cache")
			_ = redisCache.Close()
		} else {
			reports = redisCache
			closers = append(closers, redisCache.Close)
			log.Info().Str("addr", cfg.RedisAddr).Msg("report cache: redis")
		}
	} else {
		log.Info().Msg("report cache: noop")
	}

	// Validate already parsed both of these.
	ticket, _ := cfg.FallbackTicket()
	loc, _ := cfg.Location()

	svc := service.New(repo, reports, service.Options{
		Partners:            cfg.PartnerList(),
		Categories:          cfg.CategoryList(),
		MerchandiseCategory: cfg.MerchandiseCategory,
		FallbackTicket:      ticket,
		Location:            loc,
		ReportTTL:           cfg.ReportTTL(),
	})
	api := httpapi.New(svc, httpapi.Options{
		AllowedOrigin:  cfg.AllowedOrigin,
		ShopName:       cfg.ShopName,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Str("shop", cfg.ShopName).Msg("ledger backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT. An
// unknown level falls back to info.
func newLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if strings.EqualFold(cfg.LogFormat, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// openRepository picks postgres when DATABASE_URL is set and the local
// sqlite file otherwise. It never falls back from one to the other.
func openRepository(ctx context.Context, cfg config.Config) (*sqlstore.Store, string, error) {
	if cfg.DatabaseURL != "" {
		repo, err := postgres.New(ctx, cfg.DatabaseURL)
		return repo, "postgres", err
	}
	repo, err := sqlite.New(ctx, cfg.SQLitePath)
	return repo, "sqlite", err
}
