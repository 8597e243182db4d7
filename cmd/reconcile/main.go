// Package main runs a one-shot reconciliation between the identity provider's
// ban list and local profile soft deletes. Intended for cron.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/config"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/identity"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/database"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Identity.ProviderBaseURL == "" {
		logger.Fatal("IDENTITY_PROVIDER_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	provider := identity.NewHTTPProvider(cfg.Identity.ProviderBaseURL, cfg.Identity.ProviderAdminKey)
	service := identity.NewService(
		identity.NewTokenVerifier(cfg.Identity.JWTSecret),
		identity.NewRepository(pool),
		provider,
		logger,
	)

	report, err := service.Reconcile(ctx)
	if err != nil {
		logger.Fatal("reconcile", zap.Error(err))
	}
	logger.Info("reconciliation complete",
		zap.Int("bans_reasserted", report.BansReasserted),
		zap.Int("profiles_stamped", report.ProfilesStamped),
	)
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
