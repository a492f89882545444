package variants

import (
	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/completion"
	"github.com/memeulacra/memegen/internal/jsonrepair"
	"github.com/memeulacra/memegen/internal/logger"
)

var FXModule = fx.Module("variants",
	fx.Provide(
		func(client *completion.Client, repairer *jsonrepair.Repairer, log *logger.Logger) *Generator {
			return NewGenerator(client, repairer, log)
		},
	),
)
