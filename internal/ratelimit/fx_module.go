package ratelimit

import "go.uber.org/fx"

// FXModule provides one shared Governor for all completion callers.
var FXModule = fx.Module("ratelimit",
	fx.Provide(NewGovernor),
)
