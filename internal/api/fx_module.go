package api

import (
	"context"
	"net/http"

	"go.uber.org/fx"

	"github.com/memeulacra/memegen/internal/logger"
	"github.com/memeulacra/memegen/internal/orchestrator"
	"github.com/memeulacra/memegen/internal/store"
)

var FXModule = fx.Module("api",
	fx.Provide(
		NewConfig,
		func(o *orchestrator.Orchestrator, st *store.Store, log *logger.Logger) *Handler {
			return NewHandler(o, st, log)
		},
		func(cfg *Config, h *Handler) *http.Server {
			return &http.Server{
				Addr:         cfg.Address,
				Handler:      h.Router(),
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			}
		},
	),
	fx.Invoke(RegisterAPILifecycle),
)

// RegisterAPILifecycle manages the startup and shutdown lifecycle of the
// HTTP API server.
func RegisterAPILifecycle(lc fx.Lifecycle, server *http.Server, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("Starting API server", nil, map[string]interface{}{
					"address": server.Addr,
				})

				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("Error starting API server", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down API server", nil, nil)
			return server.Shutdown(ctx)
		},
	})
}
