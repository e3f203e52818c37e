// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the HTTP
// server, logging, storage, authentication, the external price provider, the
// asset cache, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-crypto-backend/internal/sysutil"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported values for PRICE_BLOCK_MODE.
const (
	BlockModeReschedule = "reschedule"
	BlockModeStacked    = "stacked"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-crypto-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and addresses the relational store.
type DBConfig struct {
	Driver string // DB_DRIVER: sqlite|postgres
	Path   string // DB_PATH, sqlite file
	URL    string // DATABASE_URL, postgres DSN
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	JWTSecret  string        // JWT_SECRET
	TokenTTL   time.Duration // JWT_TTL
	BcryptCost int           // BCRYPT_COST
}

// PriceAPIConfig configures the upstream price provider and the block window
// applied after it throttles us.
type PriceAPIConfig struct {
	BaseURL       string        // PRICE_API_BASE_URL
	APIKey        string        // PRICE_API_KEY (optional demo key header)
	Timeout       time.Duration // PRICE_API_TIMEOUT
	Currencies    []string      // PRICE_CURRENCIES, exactly two codes
	BlockDuration time.Duration // PRICE_BLOCK_DURATION
	BlockMode     string        // PRICE_BLOCK_MODE: reschedule|stacked
}

// CacheConfig configures the optional Redis-backed asset list cache.
type CacheConfig struct {
	RedisAddr string        // REDIS_ADDR; empty disables the cache
	AssetTTL  time.Duration // ASSET_CACHE_TTL
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

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DB DBConfig

	// Auth
	Auth AuthConfig

	// Upstream prices
	Prices PriceAPIConfig
	Cache  CacheConfig

	// Inbound rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is replayable

	// Observability
	OTEL OTELConfig
}

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
		Port:              getenv("PORT", "3000"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/")),

		// Storage
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
			Path:   getenv("DB_PATH", "app.db"),
			URL:    getenv("DATABASE_URL", ""),
		},

		// Auth
		Auth: AuthConfig{
			JWTSecret:  getenv("JWT_SECRET", "defaultSecret"),
			TokenTTL:   getdur("JWT_TTL", time.Hour),
			BcryptCost: getint("BCRYPT_COST", 10),
		},

		// Upstream prices
		Prices: PriceAPIConfig{
			BaseURL:       strings.TrimRight(getenv("PRICE_API_BASE_URL", "https://api.coingecko.com/api/v3"), "/"),
			APIKey:        getenv("PRICE_API_KEY", ""),
			Timeout:       getdur("PRICE_API_TIMEOUT", 10*time.Second),
			Currencies:    splitCSV(strings.ToLower(getenv("PRICE_CURRENCIES", "brl,usd"))),
			BlockDuration: getdur("PRICE_BLOCK_DURATION", 60*time.Second),
			BlockMode:     strings.ToLower(getenv("PRICE_BLOCK_MODE", BlockModeReschedule)),
		},
		Cache: CacheConfig{
			RedisAddr: getenv("REDIS_ADDR", ""),
			AssetTTL:  getdur("ASSET_CACHE_TTL", 10*time.Minute),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-crypto-backend"),
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
	if cfg.DB.Driver == "postgresql" || cfg.DB.Driver == "pg" {
		cfg.DB.Driver = DriverPostgres
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
	switch cfg.DB.Driver {
	case DriverSQLite:
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case DriverPostgres:
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL must be set when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return cfg, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return cfg, errors.New("JWT_TTL must be > 0")
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return cfg, errors.New("BCRYPT_COST must be between 4 and 31")
	}
	if cfg.Prices.BaseURL == "" {
		return cfg, errors.New("PRICE_API_BASE_URL must not be empty")
	}
	if cfg.Prices.Timeout <= 0 {
		return cfg, errors.New("PRICE_API_TIMEOUT must be > 0")
	}
	if len(cfg.Prices.Currencies) != 2 || cfg.Prices.Currencies[0] == cfg.Prices.Currencies[1] {
		return cfg, errors.New("PRICE_CURRENCIES must list exactly two distinct currency codes")
	}
	if cfg.Prices.BlockDuration <= 0 {
		return cfg, errors.New("PRICE_BLOCK_DURATION must be > 0")
	}
	switch cfg.Prices.BlockMode {
	case BlockModeReschedule, BlockModeStacked:
	default:
		return cfg, errors.New("PRICE_BLOCK_MODE must be one of: reschedule, stacked")
	}
	if cfg.Cache.AssetTTL <= 0 {
		return cfg, errors.New("ASSET_CACHE_TTL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- env helpers ----

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
	v, ok := os.LookupEnv(k)
	switch {
	case !ok:
		return def
	case sysutil.IsTruthy(v):
		return true
	case sysutil.IsFalsy(v):
		return false
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

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
