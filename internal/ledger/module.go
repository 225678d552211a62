package ledger

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"binary_bot/internal/modules/config"
	"binary_bot/pkg/db"
	"binary_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(
			// без DSN живём в памяти (локальная разработка и тесты)
			func(ctx context.Context, cfg *config.Config) (Store, error) {
				if cfg.DB == "" {
					logger.Info("ledger: no DSN, using in-memory store")
					return NewMemoryStore(), nil
				}
				pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
				if err != nil {
					return nil, fmt.Errorf("ledger: create pool: %w", err)
				}
				if err = pool.Ping(ctx); err != nil {
					return nil, fmt.Errorf("ledger: ping: %w", err)
				}
				return NewPgStore(db.NewPgTxManager(pool)), nil
			},
			func(store Store, cfg *config.Config) *Service {
				return NewService(store, cfg.DefaultPairs, cfg.DefaultRiskPct, cfg.DefaultPayout)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, store Store) {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					store.Close()
					return nil
				},
			})
		}),
	)
}
