package admin

import (
	"context"

	"go.uber.org/fx"
)

// NewAdminModule provisions the event topics during startup, before
// the consumer subscribes.
func NewAdminModule() fx.Option {
	return fx.Options(
		fx.Provide(New),
		fx.Invoke(func(lc fx.Lifecycle, a *Admin) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return a.EnsureTopics(ctx)
				},
				OnStop: func(ctx context.Context) error {
					a.Close()
					return nil
				},
			})
		}),
	)
}
