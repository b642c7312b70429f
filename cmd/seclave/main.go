package main

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seclave/seclave"
	fiberadapter "github.com/seclave/seclave/adapters/fiber"
	"github.com/seclave/seclave/adapters/memory"
	pgxadapter "github.com/seclave/seclave/adapters/pgx"
	"github.com/seclave/seclave/config"
	"github.com/seclave/seclave/core"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := newLogger(cfg.LogLevel)
	defer log.Sync()

	storage, err := newStorage(cfg, log)
	if err != nil {
		log.Fatal("storage init failed", zap.Error(err))
	}

	opts := seclave.Options{
		Storage:       storage,
		SessionConfig: &seclave.Config{MaxAge: cfg.SessionMaxAge},
	}
	if cfg.ProviderConfigured() {
		opts.Provider = &seclave.ProviderConfig{
			ClientID:     cfg.ProviderClientID,
			ClientSecret: cfg.ProviderClientSecret,
			RedirectURL:  cfg.ProviderRedirectURL,
			AuthURL:      cfg.ProviderAuthURL,
			TokenURL:     cfg.ProviderTokenURL,
			UserInfoURL:  cfg.ProviderUserInfoURL,
			Scopes:       cfg.ProviderScopes,
		}
	} else {
		log.Info("delegated provider not configured, local accounts only")
	}

	svc, err := seclave.New(opts)
	if err != nil {
		log.Fatal("service init failed", zap.Error(err))
	}

	app := fiber.New()
	adapter := fiberadapter.New(svc.Auth, svc.Delegated, fiberadapter.Options{
		CookieName: cfg.CookieName,
		Logger:     log,
	})
	adapter.RegisterRoutes(app)

	log.Info("server listening", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newStorage(cfg config.Config, log *zap.Logger) (core.AuthStorage, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no database configured, using in-memory storage")
		return memory.New(), nil
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return pgxadapter.New(pool), nil
}

func newLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}
