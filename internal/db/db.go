package db

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/lebarbier/lebarbier-api/internal/config"
)

const (
	pingTimeout             = 5 * time.Second
	poolMonitorInterval     = 5 * time.Second
	poolWarnDurationTrigger = 50 * time.Millisecond
)

type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

func New(p Params) (*gorm.DB, error) {
	db, err := Open(p.Config, p.Logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	p.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, pingTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "ping postgres")
			}

			if p.Config.Postgres.AutoMigrate {
				if err := Migrate(db.WithContext(ctx)); err != nil {
					return err
				}
			}

			go monitorPool(monitorCtx, p.Logger, sqlDB, poolMonitorInterval)

			return nil
		},
		OnStop: func(context.Context) error {
			cancelMonitor()
			return sqlDB.Close()
		},
	})

	return db, nil
}

// Open connects to the primary and registers read replicas, if any. Writes
// and explicit transactions always go to the primary.
func Open(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{
		PrepareStmt: true,
		Logger:      newGormLogger(log, cfg.Env.Debug),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}

	if len(cfg.Postgres.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.Postgres.Replicas))
		for _, dsn := range cfg.Postgres.Replicas {
			replicas = append(replicas, postgres.Open(dsn))
		}

		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(cfg.Postgres.MaxOpenConns).
			SetMaxIdleConns(cfg.Postgres.MaxIdleConns).
			SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime).
			SetConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime)

		if err := db.Use(resolver); err != nil {
			return nil, errors.Wrap(err, "register read replicas")
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}

	sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime)

	return db, nil
}

func monitorPool(ctx context.Context, log *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			waits := cur.WaitCount - prev.WaitCount
			waited := cur.WaitDuration - prev.WaitDuration

			if waits > 0 {
				level := slog.LevelDebug
				if waited >= poolWarnDurationTrigger {
					level = slog.LevelWarn
				}
				log.LogAttrs(ctx, level, "postgres pool wait",
					slog.Int64("wait_count", waits),
					slog.Duration("wait_duration", waited),
					slog.Int("open", cur.OpenConnections),
					slog.Int("in_use", cur.InUse),
					slog.Int("idle", cur.Idle),
				)
			}

			prev = cur
		}
	}
}
