// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage backends, detection policy, and
// observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dupewatch/go-dupewatch/internal/sysutil"
)

// TelegramConfig defines how the bot talks to the Telegram API.
type TelegramConfig struct {
	BotToken   string // BOT_TOKEN (required)
	UseWebhook bool   // USE_WEBHOOK: webhook ingestion instead of long polling
	WebhookURL string // WEBHOOK_URL: public base URL, required when UseWebhook
}

// DetectionConfig defines the duplicate-detection policy.
type DetectionConfig struct {
	MinMessageLen   int           // MIN_MESSAGE_LEN: shorter messages are ignored
	RetentionWindow time.Duration // RETENTION_WINDOW: lookup window and prune horizon
	DisplayTZ       string        // DISPLAY_TZ: timezone for report timestamps
	ElideThreshold  int           // ELIDE_THRESHOLD: max report lines before elision
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-dupewatch")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Storage: Postgres when DATABASE_URL is set, SQLite otherwise
	DatabaseURL string // Postgres DSN/URL
	DBPath      string // SQLite path

	Telegram  TelegramConfig
	Detection DetectionConfig

	// Observability
	OTEL OTELConfig
}

// UsePostgres reports whether the networked backend was configured.
func (c Config) UsePostgres() bool { return strings.TrimSpace(c.DatabaseURL) != "" }

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Storage
		DatabaseURL: getenv("DATABASE_URL", ""),
		DBPath:      getenv("DB_PATH", "dupewatch.db"),

		Telegram: TelegramConfig{
			BotToken:   strings.TrimSpace(getenv("BOT_TOKEN", "")),
			UseWebhook: getbool("USE_WEBHOOK", false),
			WebhookURL: strings.TrimRight(getenv("WEBHOOK_URL", ""), "/"),
		},

		Detection: DetectionConfig{
			MinMessageLen:   getint("MIN_MESSAGE_LEN", 5),
			RetentionWindow: getdur("RETENTION_WINDOW", 7*24*time.Hour),
			DisplayTZ:       getenv("DISPLAY_TZ", "Asia/Jakarta"),
			ElideThreshold:  getint("ELIDE_THRESHOLD", 4),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-dupewatch"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.Telegram.BotToken == "" {
		return cfg, errors.New("BOT_TOKEN must not be empty")
	}
	if cfg.Telegram.UseWebhook && !strings.HasPrefix(cfg.Telegram.WebhookURL, "https://") {
		return cfg, errors.New("WEBHOOK_URL must be an https URL when USE_WEBHOOK is set")
	}
	if !cfg.UsePostgres() && strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Detection.MinMessageLen < 1 {
		return cfg, errors.New("MIN_MESSAGE_LEN must be >= 1")
	}
	if cfg.Detection.RetentionWindow <= 0 {
		return cfg, errors.New("RETENTION_WINDOW must be > 0")
	}
	if cfg.Detection.ElideThreshold < 3 {
		return cfg, errors.New("ELIDE_THRESHOLD must be >= 3")
	}
	if _, err := time.LoadLocation(cfg.Detection.DisplayTZ); err != nil {
		return cfg, errors.New("DISPLAY_TZ must be a valid IANA timezone")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// Location resolves the configured display timezone. Validation in Load
// guarantees this succeeds for loaded configs.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Detection.DisplayTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if sysutil.IsTruthy(v) {
			return true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
