package completion

import (
	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/ratelimit"
)

// FXModule provides the completion client backed by the shared rate governor.
var FXModule = fx.Module("completion",
	fx.Provide(
		NewConfig,
		func(cfg *Config, governor *ratelimit.Governor) (*Client, error) {
			return NewClient(cfg, governor)
		},
	),
)
