package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"github.com/lebarbier/lebarbier-api/internal/config"
)

type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewClient returns nil when the cache is disabled.
func NewClient(p Params) (*redis.Client, error) {
	if !p.Config.Redis.Enabled {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         p.Config.Redis.Addr,
		Password:     p.Config.Redis.Password,
		DB:           p.Config.Redis.DB,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	p.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				// a cold cache is not fatal: reads fall through to Postgres
				p.Logger.Warn("redis unreachable at startup", slog.String("addr", p.Config.Redis.Addr), slog.Any("error", err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return errors.Wrap(rdb.Close(), "close redis")
		},
	})

	return rdb, nil
}
