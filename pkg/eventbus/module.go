package eventbus

import (
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/producer"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEventBusModule() fx.Option {
	return fx.Provide(func(p producer.Producer, conf config.Config, log *zap.Logger) EventBus {
		return New(p, conf.Producer, log.With(zap.String("component", "eventbus")))
	})
}
