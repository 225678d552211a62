package telegram

import (
	"context"

	"go.uber.org/fx"

	"binary_bot/internal/modules/telegram_bot/service"
	"binary_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			service.NewTelegram, // func(*config.Config, *ledger.Service, *runner.Runner, *marketdata.Client) (*service.Telegram, error)
		),
		// Запуск основного цикла через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						go func() {
							if err := t.Start(context.Background()); err != nil {
								logger.Error("telegram loop: %v", err)
							}
						}()
						return nil
					},
					OnStop: func(ctx context.Context) error {
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
