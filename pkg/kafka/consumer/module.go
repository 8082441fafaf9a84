package consumer

import (
	"context"

	"github.com/Sokol111/wallet-eventbus/pkg/core/health"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/producer"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// AsEventHandler wraps a handler constructor so the consumer module
// picks it up. Registration order follows module declaration order.
func AsEventHandler(constructor any) fx.Option {
	return fx.Provide(
		fx.Annotate(
			constructor,
			fx.As(new(EventHandler)),
			fx.ResultTags(`group:"event_handlers"`),
		),
	)
}

func NewConsumerModule() fx.Option {
	return fx.Provide(
		fx.Annotate(
			provideConsumer,
			fx.ParamTags(``, ``, ``, `group:"event_handlers"`, ``, ``),
		),
	)
}

func provideConsumer(
	lc fx.Lifecycle,
	conf config.Config,
	p producer.Producer,
	handlers []EventHandler,
	log *zap.Logger,
	componentMgr health.ComponentManager,
) (*Consumer, error) {
	builder := NewBuilder(conf, p, log)
	for _, h := range handlers {
		builder.Register(h)
	}

	c, err := builder.Subscribe()
	if err != nil {
		return nil, err
	}

	markReady := componentMgr.AddComponent("kafka-consumer-" + conf.Consumer.GroupID)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := c.Start(); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return c.Stop()
		},
	})

	return c, nil
}
