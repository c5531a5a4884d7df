package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/STTM-NSU/crypto-dashboard/internal/auth"
	"github.com/STTM-NSU/crypto-dashboard/internal/coingecko"
	"github.com/STTM-NSU/crypto-dashboard/internal/config"
	"github.com/STTM-NSU/crypto-dashboard/internal/dashboard"
	"github.com/STTM-NSU/crypto-dashboard/internal/format"
	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
	"github.com/STTM-NSU/crypto-dashboard/internal/market"
	"github.com/STTM-NSU/crypto-dashboard/internal/portfolio"
	"github.com/STTM-NSU/crypto-dashboard/internal/postgres"
	"github.com/STTM-NSU/crypto-dashboard/internal/server"
	"github.com/STTM-NSU/crypto-dashboard/internal/storage"
	"github.com/joho/godotenv"
)

const (
	_cfgFilePath = "./configs/dashboard.yaml"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig(_cfgFilePath)
	if err != nil {
		log.Fatalf("%s: can't load config", err)
	}

	zapLogger, loggerSync, err := logger.NewZapLogger(logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		log.Fatalf("%s: can't init logger", err)
	}
	defer loggerSync()

	if envErr != nil {
		zapLogger.Warnf("can't detect .env file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kv, closeStore, err := newStore(ctx, cfg.Storage, zapLogger)
	if err != nil {
		zapLogger.Fatalf("%s: can't init storage", err)
	}
	defer closeStore()

	coinGecko := coingecko.NewClient(cfg.Market, zapLogger)
	marketService := market.New(coinGecko, cfg.Market, zapLogger)
	users := auth.NewStore(kv, zapLogger)
	portfolios := portfolio.NewStore(kv, users, zapLogger)
	d := dashboard.New(marketService, users, portfolios, format.New(coinGecko.Currency()), zapLogger)

	go marketService.Run(ctx)

	zapLogger.Infof("listening on :%s (currency %s, storage %s)", cfg.Server.Port, cfg.Market.Currency, cfg.Storage.Driver)
	s := server.NewHTTPServer(ctx, cfg.Server.Port, cfg.Server.ShutdownTimeout, server.NewHandler(d, zapLogger))
	if err := s.Run(ctx); err != nil {
		zapLogger.Errorf("%s: server stopped", err)
		return
	}
	zapLogger.Infof("shutdown complete")
}

func newStore(ctx context.Context, cfg config.StorageConfig, l logger.Logger) (storage.Store, func(), error) {
	switch cfg.Driver {
	case config.Memory:
		return storage.NewMemoryStore(), func() {}, nil
	case config.File:
		s, err := storage.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case config.Postgres:
		pgConfig := postgres.NewConfigFromEnv().Setup()
		l.Debugf("trying to connect to db with: %s", pgConfig)
		db, err := postgres.NewDB(ctx, pgConfig)
		if err != nil {
			return nil, nil, err
		}
		s := storage.NewPostgresStore(db)
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, func() { _ = db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
}
