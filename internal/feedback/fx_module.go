package feedback

import (
	"context"

	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/logger"
	"github.com/memeulacra/memegen/internal/store"
	"github.com/memeulacra/memegen/internal/tracer"
)

var FXModule = fx.Module("feedback",
	fx.Provide(
		NewConfig,
		func(cfg *Config, st *store.Store, tr *tracer.Tracer, log *logger.Logger) *Consumer {
			return NewConsumer(cfg, st, tr, log)
		},
	),
	fx.Invoke(RegisterFeedbackLifecycle),
)

func RegisterFeedbackLifecycle(lc fx.Lifecycle, consumer *Consumer, log *logger.Logger) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := consumer.Run(runCtx); err != nil {
					log.Error("feedback consumer stopped", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return consumer.Close()
		},
	})
}
