package producer

import (
	"context"

	"github.com/Sokol111/wallet-eventbus/pkg/core/health"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewProducerModule() fx.Option {
	return fx.Provide(provideProducer)
}

func provideProducer(lc fx.Lifecycle, log *zap.Logger, conf config.Config, componentMgr health.ComponentManager) (Producer, error) {
	componentLog := log.With(zap.String("component", "producer"))

	client, err := newKafkaClient(conf)
	if err != nil {
		return nil, err
	}
	p := newProducer(client, conf.Producer, componentLog)

	markReady := componentMgr.AddComponent("kafka-producer")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := awaitBrokers(ctx, client, componentLog,
				conf.Producer.ReadinessTimeoutSeconds, *conf.Producer.FailOnBrokerError); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Close()
			return nil
		},
	})

	return p, nil
}
