package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/authkeeper/internal/filex"
	"github.com/redis/go-redis/v9"
)

func noopClose() error { return nil }

// openStore builds the session store named by cfg.StoreDriver and returns
// the function that releases it.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return session.NewMemoryStore(), noopClose, nil

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return session.NewRedisStore(rdb, session.DefaultRedisPrefix), rdb.Close, nil

	case config.DriverSQLite:
		path, err := filex.PathIn(cfg.DataDir, cfg.DatabaseFile)
		if err != nil {
			return nil, nil, err
		}
		db, err := client.InitDatabase(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite %s: %w", path, err)
		}
		return session.NewSQLiteStore(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
	}
}
