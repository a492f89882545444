package events

import (
	"context"

	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/logger"
)

var FXModule = fx.Module("events",
	fx.Provide(
		NewConfig,
		func(cfg *Config, log *logger.Logger) (*Publisher, error) {
			return NewPublisher(cfg, log)
		},
	),
	fx.Invoke(RegisterEventsLifecycle),
)

func RegisterEventsLifecycle(lc fx.Lifecycle, publisher *Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
}
