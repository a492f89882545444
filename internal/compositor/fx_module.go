package compositor

import (
	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/logger"
)

var FXModule = fx.Module("compositor",
	fx.Provide(
		NewConfig,
		func(cfg Config, log *logger.Logger) *Renderer {
			return NewRenderer(cfg, log)
		},
	),
)
