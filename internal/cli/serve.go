package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-crypto-backend/internal/auth"
	"github.com/tbourn/go-crypto-backend/internal/config"
	"github.com/tbourn/go-crypto-backend/internal/guard"
	httpapi "github.com/tbourn/go-crypto-backend/internal/http"
	"github.com/tbourn/go-crypto-backend/internal/observability"
	"github.com/tbourn/go-crypto-backend/internal/quote"
	"github.com/tbourn/go-crypto-backend/internal/repo"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	},
}

func runServe(ctx context.Context, cfg config.Config) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, appVersion())
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	srv, cleanup, err := buildServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", appVersion()).
			Str("db_driver", cfg.DB.Driver).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildServer opens storage, builds the guarded price client and mounts the
// routes. On success cleanup releases everything buildServer acquired.
func buildServer(ctx context.Context, cfg config.Config) (*http.Server, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	db, err := repo.Open(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, func() { _ = sqlDB.Close() })
	}
	if err := repo.AutoMigrate(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	limiter := guard.NewRateLimiter(
		guard.WithBlockDuration(cfg.Prices.BlockDuration),
		guard.WithMode(guard.ParseMode(cfg.Prices.BlockMode)),
	)
	closers = append(closers, limiter.Stop)
	log.Info().
		Dur("block_duration", limiter.BlockDuration()).
		Str("block_mode", limiter.Mode().String()).
		Msg("price provider guard configured")

	opts := []quote.Option{
		quote.WithTimeout(cfg.Prices.Timeout),
		quote.WithAPIKey(cfg.Prices.APIKey),
		quote.WithCurrencies(cfg.Prices.Currencies[0], cfg.Prices.Currencies[1]),
	}
	if rdb := openRedis(ctx, cfg.Cache.RedisAddr); rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
		opts = append(opts, quote.WithCache(quote.NewRedisCache(rdb, cfg.Cache.AssetTTL)))
	}
	prices := quote.New(cfg.Prices.BaseURL, limiter, guard.NewShield(limiter), opts...)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:      db,
		Prices:  prices,
		Limiter: limiter,
		Tokens:  auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Hasher:  auth.NewHasher(cfg.Auth.BcryptCost),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	return srv, cleanup, nil
}

// openRedis returns a connected client, or nil when addr is empty or the
// server does not answer. The asset cache is optional.
func openRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis unavailable, asset cache disabled")
		_ = rdb.Close()
		return nil
	}
	log.Info().Str("addr", addr).Msg("asset cache enabled")
	return rdb
}
