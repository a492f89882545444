package orchestrator

import (
	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/catalog"
	"github.com/memeulacra/memegen/internal/compositor"
	"github.com/memeulacra/memegen/internal/events"
	"github.com/memeulacra/memegen/internal/logger"
	"github.com/memeulacra/memegen/internal/metrics"
	"github.com/memeulacra/memegen/internal/publisher"
	"github.com/memeulacra/memegen/internal/store"
	"github.com/memeulacra/memegen/internal/tracer"
	"github.com/memeulacra/memegen/internal/variants"
)

var FXModule = fx.Module("orchestrator",
	fx.Provide(
		NewConfig,
		func(
			cfg *Config,
			st *store.Store,
			gen *variants.Generator,
			matcher *catalog.Matcher,
			uploader *publisher.Uploader,
			renderer *compositor.Renderer,
			notifier *events.Publisher,
			m *metrics.Metrics,
			tr *tracer.Tracer,
			log *logger.Logger,
		) *Orchestrator {
			return New(cfg, st, gen, matcher, uploader, renderer, notifier, m, tr, log)
		},
	),
)
