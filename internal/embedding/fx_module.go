package embedding

import "go.uber.org/fx"

var FXModule = fx.Module("embedding",
	fx.Provide(
		NewConfig,
		NewClient,
	),
)
