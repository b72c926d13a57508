// Command dupewatch runs the duplicate message watcher: a Telegram bot that
// remembers what every chat has already seen and calls out reposts with a
// full sighting history.
//
// Startup order:
//  1. Load .env (optional) and environment configuration
//  2. Configure logging and OpenTelemetry tracing
//  3. Open storage (Postgres when DATABASE_URL is set, SQLite otherwise)
//     and run migrations
//  4. Wire the detection service and the Telegram bot
//  5. Serve HTTP (health, metrics, webhook) and, unless webhook mode is
//     enabled, start the long-polling loop
//
// Shutdown is signal-driven: SIGINT/SIGTERM stops polling, drains the HTTP
// server, and flushes pending trace spans.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/dupewatch/go-dupewatch/internal/config"
	httpapi "github.com/dupewatch/go-dupewatch/internal/http"
	"github.com/dupewatch/go-dupewatch/internal/observability"
	"github.com/dupewatch/go-dupewatch/internal/repo"
	"github.com/dupewatch/go-dupewatch/internal/services"
	"github.com/dupewatch/go-dupewatch/internal/sysutil"
	"github.com/dupewatch/go-dupewatch/internal/telegram"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

const shutdownGrace = 10 * time.Second

func main() {
	// .env is a local development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db := openStorage(cfg)

	detector := &services.DedupService{
		DB:              db,
		Store:           repo.OccurrenceStore{},
		MinMessageLen:   cfg.Detection.MinMessageLen,
		RetentionWindow: cfg.Detection.RetentionWindow,
		Location:        cfg.Location(),
		ElideThreshold:  cfg.Detection.ElideThreshold,
	}

	bot, err := telegram.NewBotService(detector, cfg.Telegram)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram authorization failed")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, bot, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	pollingDone := make(chan struct{})
	if cfg.Telegram.UseWebhook {
		log.Info().Str("url", cfg.Telegram.WebhookURL).Msg("webhook mode")
		bot.StartWebhook(ctx)
		close(pollingDone)
	} else {
		go func() {
			defer close(pollingDone)
			bot.Run(ctx)
		}()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}

	select {
	case <-pollingDone:
	case <-sctx.Done():
		log.Warn().Msg("polling loop did not stop in time")
	}

	log.Info().Msg("bye")
}

// openStorage connects to the configured backend, attaches GORM tracing when
// OTel is enabled, and runs migrations. Any failure here is fatal: the
// detector cannot run without storage.
func openStorage(cfg config.Config) *gorm.DB {
	if cfg.UsePostgres() {
		log.Info().Msg("using postgres storage")
	} else {
		log.Info().Str("path", cfg.DBPath).Msg("using sqlite storage")
	}
	db, err := repo.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage open failed")
	}

	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin failed")
		}
	}

	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	return db
}
