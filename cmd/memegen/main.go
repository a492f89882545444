package main

import (
	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/api"
	"github.com/memeulacra/memegen/internal/catalog"
	"github.com/memeulacra/memegen/internal/completion"
	"github.com/memeulacra/memegen/internal/compositor"
	"github.com/memeulacra/memegen/internal/embedding"
	"github.com/memeulacra/memegen/internal/events"
	"github.com/memeulacra/memegen/internal/feedback"
	"github.com/memeulacra/memegen/internal/jsonrepair"
	"github.com/memeulacra/memegen/internal/logger"
	"github.com/memeulacra/memegen/internal/metrics"
	"github.com/memeulacra/memegen/internal/orchestrator"
	"github.com/memeulacra/memegen/internal/publisher"
	"github.com/memeulacra/memegen/internal/ratelimit"
	"github.com/memeulacra/memegen/internal/store"
	"github.com/memeulacra/memegen/internal/tracer"
	"github.com/memeulacra/memegen/internal/variants"
)

func main() {
	app := fx.New(
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,

		ratelimit.FXModule,
		completion.FXModule,
		jsonrepair.FXModule,
		embedding.FXModule,
		catalog.FXModule,
		store.FXModule,
		compositor.FXModule,
		publisher.FXModule,
		variants.FXModule,
		events.FXModule,
		feedback.FXModule,
		orchestrator.FXModule,
		api.FXModule,

		// Interface bindings for packages that declare their own narrow
		// dependencies.
		fx.Provide(
			func(l *logger.Logger) tracer.Logger { return l },
			func(l *logger.Logger) ratelimit.Logger { return l },
			func(m *metrics.Metrics) ratelimit.Observer { return m },
		),
	)

	app.Run()
}
