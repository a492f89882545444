package catalog

import (
	"context"
	"fmt"
	"slices"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
)

//
// ──────────────────────────────────────────────────────────────
//   TEMPLATE CATALOG
// ──────────────────────────────────────────────────────────────
//
// This file defines a thin wrapper around the official Qdrant Go client,
// scoped to the meme template collection.
//
// Responsibilities:
//   • Establish and validate connectivity with Qdrant.
//   • Create the template collection if missing.
//   • Upsert template entries (used by the catalog loader).
//   • Similarity search over template descriptions.
//

// Embedder computes the query vector for similarity search.
// *embedding.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	VectorSize() int
}

// Logger defines the logging operations the catalog package needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Matcher finds templates whose description matches a goal.
type Matcher struct {
	api      *qdrant.Client
	embedder Embedder
	cfg      *Config
	logger   Logger
}

// NewMatcher constructs a Matcher and validates connectivity via a health
// check. The Qdrant SDK creates lightweight gRPC connections, so failing
// fast here is cheap.
func NewMatcher(cfg *Config, embedder Embedder, logger Logger) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: invalid config: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Endpoint,
		Port:                   cfg.Port,
		APIKey:                 cfg.ApiKey,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to initialize qdrant client: %w", err)
	}

	m := &Matcher{
		api:      client,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}

	if err := m.healthCheck(); err != nil {
		return nil, fmt.Errorf("catalog: health check failed: %w", err)
	}

	logger.Info("template catalog connected", nil, map[string]interface{}{
		"endpoint":   cfg.Endpoint,
		"collection": cfg.Collection,
	})
	return m, nil
}

func (m *Matcher) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := m.api.HealthCheck(ctx); err != nil {
		return err
	}
	return nil
}

// EnsureCollection verifies the template collection exists and creates it if
// missing. Safe to call on every startup.
func (m *Matcher) EnsureCollection(ctx context.Context) error {
	collections, err := m.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("catalog: failed to list collections: %w", err)
	}
	if slices.Contains(collections, m.cfg.Collection) {
		m.logger.Debug("template collection already exists", nil, map[string]interface{}{
			"collection": m.cfg.Collection,
		})
		return nil
	}

	m.logger.Info("creating template collection", nil, map[string]interface{}{
		"collection":  m.cfg.Collection,
		"vector_size": m.embedder.VectorSize(),
	})

	req := &qdrant.CreateCollection{
		CollectionName: m.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(m.embedder.VectorSize()),
			Distance: qdrant.Distance_Cosine,
		}),
	}

	if err := m.api.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("catalog: failed to create collection %q: %w", m.cfg.Collection, err)
	}
	return nil
}

// FindSimilar embeds the query and returns the topK closest templates by
// cosine similarity, best first.
func (m *Matcher) FindSimilar(ctx context.Context, query string, topK int) ([]Template, error) {
	if query == "" {
		return nil, fmt.Errorf("catalog: empty query")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("catalog: topK must be positive, got %d", topK)
	}

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to embed query: %w", err)
	}

	limit := uint64(topK)
	points, err := m.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: m.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: similarity query failed: %w", err)
	}

	templates := make([]Template, 0, len(points))
	for _, point := range points {
		tmpl, err := templateFromPayload(point.Payload)
		if err != nil {
			m.logger.Warn("skipping template with unreadable payload", err, nil)
			continue
		}
		tmpl.Similarity = point.Score
		templates = append(templates, tmpl)
	}

	m.logger.Debug("similarity search finished", nil, map[string]interface{}{
		"query_length": len(query),
		"results":      len(templates),
	})
	return templates, nil
}

// Upsert writes template entries into the collection. Used by the catalog
// loader, not the request path.
func (m *Matcher) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, e := range entries {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(e.Template.ID)),
			Vectors: qdrant.NewVectors(e.Vector...),
			Payload: qdrant.NewValueMap(payloadFromTemplate(e.Template)),
		})
	}

	wait := true
	_, err := m.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: m.cfg.Collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("catalog: upsert failed: %w", err)
	}
	return nil
}

// Entry pairs a template with its precomputed description vector.
type Entry struct {
	Template Template
	Vector   []float32
}
