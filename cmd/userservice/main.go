package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"userservice/internal/config"
	"userservice/internal/logger"
	"userservice/internal/mongo"
	"userservice/internal/routing"
	"userservice/pkg/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.Load(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	router := routing.NewRouter(repo, logger, routing.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	if err := routing.StartServer(ctx, cfg.Addr, router, cfg.ShutdownTimeout, logger); err != nil {
		logger.Error("server stopped", "error", err)
		closeStore()
		os.Exit(1)
	}
	logger.Info("server exiting")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (user.Repository, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return user.NewMemoryRepo(), func() {}, nil
	}

	client, db, err := mongo.LoadDB(ctx, cfg.MongoURI, cfg.MongoDBName, cfg.MongoConnectTimeout)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("mongo disconnect", "error", err)
		}
	}

	if cfg.MongoEnsureIndexes {
		if err := mongo.EnsureUserIndexes(ctx, db, cfg.MongoCollection); err != nil {
			closeFn()
			return nil, nil, err
		}
	}

	logger.Info("connected to mongo", "db", cfg.MongoDBName, "collection", cfg.MongoCollection)
	return user.NewMongoRepo(db, cfg.MongoCollection), closeFn, nil
}
