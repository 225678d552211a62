package marketdata

import (
	"context"
	"time"

	"go.uber.org/fx"

	"binary_bot/internal/modules/config"
	health "binary_bot/internal/modules/health/service"
	"binary_bot/internal/modules/marketdata/service"
	"binary_bot/internal/runner"
)

func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			func(cfg *config.Config) *service.Client {
				return service.NewClient(cfg.Market.BaseURL, cfg.Market.WSURL)
			},
			func(c *service.Client) runner.BarSource { return c },
		),
		// греем кэш последних цен по дефолтному watchlist, /estado читает из него
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, c *service.Client, state *health.State) {
			streamCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					for _, symbol := range cfg.DefaultPairs {
						ch := c.StreamPrice(streamCtx, symbol)
						go func() {
							for range ch {
								state.SetWSConnected(true)
								state.TouchTick(time.Now())
							}
							state.SetWSConnected(false)
						}()
					}
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
