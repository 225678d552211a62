package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"binary_bot/internal/ledger"
	"binary_bot/internal/modules/config"
	"binary_bot/internal/modules/health"
	"binary_bot/internal/modules/marketdata"
	telegram "binary_bot/internal/modules/telegram_bot"
	"binary_bot/internal/runner"
	"binary_bot/pkg/logger"
	"binary_bot/pkg/tracing"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		health.Module(),
		ledger.Module(),
		marketdata.Module(),
		runner.Module(),
		telegram.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			if cfg.Tracing.Host == "" {
				return nil
			}
			tracing.SetServiceName("binary_bot")
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Tracing.Host,
				Port: cfg.Tracing.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	<-app.Done()
	if err := app.Stop(context.Background()); err != nil {
		log.Fatal(err)
	}
}
