package runner

import (
	"context"

	"go.uber.org/fx"

	"binary_bot/internal/engine"
	"binary_bot/internal/modules/config"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(cfg *config.Config) (engine.Engine, error) {
				return engine.New(cfg.Engine)
			},
			func(cfg *config.Config) *Pool {
				return NewPool(cfg.Workers)
			},
			func(src BarSource, eng engine.Engine, pool *Pool, cfg *config.Config) *Runner {
				return New(src, eng, pool, Config{
					SetupInterval:   cfg.SetupInterval,
					ConfirmInterval: cfg.ConfirmInterval,
					TaskTimeout:     cfg.TaskTimeout,
				})
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, pool *Pool) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					pool.Start()
					return nil
				},
				OnStop: func(context.Context) error {
					pool.Stop()
					return nil
				},
			})
		}),
	)
}
