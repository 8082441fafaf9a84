package mongo

import (
	"context"

	"github.com/Sokol111/wallet-eventbus/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewMongoModule() fx.Option {
	return fx.Provide(
		newConfig,
		provideMongo,
	)
}

func provideMongo(lc fx.Lifecycle, conf Config, log *zap.Logger, componentMgr health.ComponentManager) (Mongo, error) {
	c, err := newClient(conf, log)
	if err != nil {
		return nil, err
	}

	markReady := componentMgr.AddComponent("mongo")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := c.connect(ctx); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return c.disconnect(ctx)
		},
	})

	return c, nil
}
