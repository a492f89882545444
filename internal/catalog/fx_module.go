package catalog

import (
	"context"

	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/embedding"
	"github.com/memeulacra/memegen/internal/logger"
)

var FXModule = fx.Module("catalog",
	fx.Provide(
		NewConfig,
		func(cfg *Config, embedder *embedding.Client, log *logger.Logger) (*Matcher, error) {
			return NewMatcher(cfg, embedder, log)
		},
	),
	fx.Invoke(RegisterCatalogLifecycle),
)

// RegisterCatalogLifecycle makes sure the template collection exists before
// the application starts serving.
func RegisterCatalogLifecycle(lc fx.Lifecycle, m *Matcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return m.EnsureCollection(ctx)
		},
	})
}
