package jsonrepair

import (
	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/completion"
	"github.com/memeulacra/memegen/internal/logger"
)

var FXModule = fx.Module("jsonrepair",
	fx.Provide(
		func(client *completion.Client, log *logger.Logger) *Repairer {
			return NewRepairer(client, log)
		},
	),
)
