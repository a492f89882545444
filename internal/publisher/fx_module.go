package publisher

import (
	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/logger"
)

var FXModule = fx.Module("publisher",
	fx.Provide(
		NewConfig,
		func(cfg *Config, log *logger.Logger) (*Uploader, error) {
			return NewUploader(cfg, log)
		},
	),
)
