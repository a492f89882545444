// Command catalog-sync loads the meme template table from Postgres,
// embeds each template's description and upserts the result into the
// vector index. Run it after editing the template table.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/memeulacra/memegen/internal/catalog"
	"github.com/memeulacra/memegen/internal/embedding"
	"github.com/memeulacra/memegen/internal/logger"
	"github.com/memeulacra/memegen/internal/store"
)

func main() {
	log := logger.NewLoggerClient(logger.NewConfig())
	defer log.Zap.Sync()

	if err := run(context.Background(), log); err != nil {
		log.Error("catalog sync failed", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	st, err := store.NewStore(store.NewConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := embedding.NewClient(embedding.NewConfig())
	if err != nil {
		return err
	}

	matcher, err := catalog.NewMatcher(catalog.NewConfig(), embedder, log)
	if err != nil {
		return err
	}
	if err := matcher.EnsureCollection(ctx); err != nil {
		return err
	}

	templates, err := st.ListTemplates(ctx)
	if err != nil {
		return err
	}

	entries := make([]catalog.Entry, 0, len(templates))
	for _, t := range templates {
		vector, err := embedder.Embed(ctx, t.Name+". "+t.Description)
		if err != nil {
			log.Warn("skipping template, embedding failed", err, map[string]interface{}{
				"template_id": t.ID,
				"name":        t.Name,
			})
			continue
		}
		entries = append(entries, catalog.Entry{
			Template: catalog.Template{
				ID:             t.ID,
				Name:           t.Name,
				Description:    t.Description,
				ImageRef:       t.ImageRef,
				BoxCount:       t.BoxCount,
				RawBoxGeometry: json.RawMessage(t.BoxGeometry),
			},
			Vector: vector,
		})
	}

	if err := matcher.Upsert(ctx, entries); err != nil {
		return err
	}

	log.Info("catalog synced", nil, map[string]interface{}{
		"templates": len(templates),
		"indexed":   len(entries),
	})
	return nil
}
