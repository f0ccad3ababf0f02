package service

import (
	"context"
	"fmt"
	"os"

	"yatube/app/cache"
	"yatube/app/config"
	"yatube/app/logging"
	"yatube/app/media"
	"yatube/app/repositories"
	"yatube/app/repositories/sqlstore"
	"yatube/app/services"

	"github.com/sirupsen/logrus"
)

// loadConfig is a variable so tests can point commands at a temp directory.
var loadConfig = config.Load

// setup loads the configuration and builds the logger every command uses.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("configure logging: %w", err)
	}
	return cfg, log, nil
}

func isBadger(cfg *config.Config) bool {
	return cfg.DBDriver == "badger"
}

// openStore opens the backend named by DB_DRIVER.
func openStore(cfg *config.Config, log *logrus.Logger) (repositories.Store, error) {
	if !isBadger(cfg) {
		store, err := sqlstore.Open(cfg.DBDriver, cfg.DatabaseURL, log.WithField("component", "gorm"))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return openBadger(cfg, log)
}

func openBadger(cfg *config.Config, log *logrus.Logger) (*repositories.BadgerStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return repositories.OpenBadger(cfg.DataDir, log.WithField("component", "badger"))
}

// openCache opens the page cache named by CACHE_BACKEND.
func openCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.CacheBackend == "redis" {
		store, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := cache.OpenMemory()
	if err != nil {
		return nil, err
	}
	return store, nil
}

// withServices opens the store, runs fn against the services and closes the
// store again. Used by the admin commands.
func withServices(fn func(*services.Services) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(services.New(store, media.NewStorage(cfg.MediaRoot), cfg.PageSize, log, nil))
}
