package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory/src/api"
	"inventory/src/auth"
	"inventory/src/cache"
	"inventory/src/config"
	"inventory/src/database"
	"inventory/src/repositories"
	"inventory/src/utils"
	aws_handler "inventory/src/utils/aws"
	"inventory/src/worker"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println(err, "Error while loading .env")
	}

	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}
	logger := utils.NewLogger(utils.ParseLevel(cfg.Logging.Level), cfg.Logging.ToFile, cfg.Logging.FilePath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errC, err := run(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		logger.WithError(err).Error("Error while running")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (<-chan error, error) {
	if cfg.AWS.DBPasswordSecretID != "" {
		handler, err := aws_handler.NewAWSHandler(cfg.AWS)
		if err != nil {
			return nil, err
		}
		if err := aws_handler.ResolveDatabasePassword(ctx, cfg, handler.SecretManager); err != nil {
			return nil, err
		}
	}

	pool, err := database.SetupDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := repositories.NewStore(pool)

	var httpServer *http.Server
	var stopJobs func()
	switch cfg.Service.Type {
	case config.WORKER:
		server := worker.NewServer(cfg, store, logger)
		if err := server.Start(); err != nil {
			pool.Close()
			return nil, err
		}
		stopJobs = server.Stop
		httpServer = worker.NewHTTPServer(server, cfg.Service.Port)
	default:
		cards, err := newCardCache(ctx, cfg)
		if err != nil {
			pool.Close()
			return nil, err
		}
		verifier := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		server := api.NewServer(cfg, store, cards, verifier, logger)
		httpServer = api.NewHTTPServer(server, cfg.Service.Port)
	}

	errC := make(chan error, 1)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer func() {
			if stopJobs != nil {
				stopJobs()
			}
			pool.Close()
			cancel()
			close(errC)
		}()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errC <- err
		}
	}()

	go func() {
		logger.WithField("type", cfg.Service.Type).WithField("addr", httpServer.Addr).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()
	return errC, nil
}

// newCardCache picks Redis when it is enabled so that every API replica sees
// the same invalidations, and an in-process LRU otherwise.
func newCardCache(ctx context.Context, cfg *config.Config) (cache.AssetCardCache, error) {
	if !cfg.Databases.Redis.Enabled {
		return cache.NewLRUCache(cfg.Cache.Size, cfg.Cache.TTL), nil
	}
	handler, err := cache.NewRedisHandler(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cache.NewRedisCache(handler, cfg.Cache.TTL), nil
}
