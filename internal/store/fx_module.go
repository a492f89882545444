package store

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("store",
	fx.Provide(
		NewConfig,
		NewStore,
	),
	fx.Invoke(RegisterStoreLifecycle),
)

// RegisterStoreLifecycle closes the connection pool on shutdown.
func RegisterStoreLifecycle(lc fx.Lifecycle, s *Store) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})
}
