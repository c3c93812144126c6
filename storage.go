package goSession

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/persist"
)

// openStorage opens the medium named by cfg. The returned closer may be nil.
func openStorage(ctx context.Context, cfg StorageConfig) (persist.Storage, func() error, error) {
	switch cfg.Backend {
	case StorageMemory, "":
		return persist.NewMemoryStorage(), nil, nil
	case StorageSQLite:
		db, err := persist.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", persist.ErrPersistence, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", persist.ErrPersistence, err)
		}
		storage, err := persist.NewGormStorage(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("%w: %w", persist.ErrPersistence, err)
		}
		return storage, sqlDB.Close, nil
	case StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		storage := persist.NewRedisStorage(rdb, cfg.RedisPrefix)
		if err := storage.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("%w: redis ping: %w", persist.ErrPersistence, err)
		}
		return storage, rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unsupported storage backend %q", ErrInvalidConfig, cfg.Backend)
	}
}
