package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"time"

	traceSpan "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/memeulacra/memegen/internal/catalog"
	"github.com/memeulacra/memegen/internal/events"
	"github.com/memeulacra/memegen/internal/store"
	"github.com/memeulacra/memegen/internal/variants"
)

var (
	// ErrValidation means the batch request itself is bad and retrying it
	// unchanged cannot succeed.
	ErrValidation = errors.New("invalid batch request")

	// ErrNoContentGenerated means every generation path came up empty and
	// there is nothing to assign to the requested slots.
	ErrNoContentGenerated = errors.New("no content generated")
)

// Store is the slice of the persistence layer the pipeline needs.
type Store interface {
	VerifyMemeIDs(ctx context.Context, ids []string) error
	TemplateExamples(ctx context.Context, templateID int64) (liked, disliked []store.Meme, err error)
	SaveSlots(ctx context.Context, updates []store.SlotUpdate) error
}

// Generator produces goals and caption variants from the batch context.
type Generator interface {
	GenerateGoals(ctx context.Context, batchContext string, numGoals int) ([]variants.Goal, error)
	GenerateVariants(ctx context.Context, tmpl catalog.Template, boxes []catalog.Box, goal variants.Goal, batchContext string, examples variants.Examples, numVariants int) ([]variants.Variant, error)
}

// Catalog searches the template index by semantic similarity.
type Catalog interface {
	FindSimilar(ctx context.Context, query string, topK int) ([]catalog.Template, error)
}

// ImageStore fetches template images and uploads rendered memes.
// *publisher.Uploader satisfies it.
type ImageStore interface {
	FetchTemplate(ctx context.Context, imageRef string) (image.Image, error)
	Upload(ctx context.Context, img image.Image, key string) (string, error)
}

// Renderer draws captions onto a template image.
type Renderer interface {
	Render(base image.Image, captions []string, boxes []catalog.Box) (image.Image, error)
}

// Notifier announces completed batches. Publishing is best effort and a
// nil Notifier disables it. headers carry the trace context onto the wire.
type Notifier interface {
	PublishBatchCompleted(ctx context.Context, ev events.BatchCompleted, headers map[string]string) error
}

// Observer records pipeline metrics.
type Observer interface {
	IncrementSlots(outcome string)
	IncrementBatches(outcome string)
	RecordStageDuration(start time.Time, stage string)
}

// Tracer is the slice of the tracing client the pipeline needs.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, traceSpan.Span)
	RecordErrorOnSpan(span traceSpan.Span, err error)
	SetAttributes(span traceSpan.Span, attrs map[string]interface{})
	GetCarrier(ctx context.Context) map[string]string
}

// Logger defines the logging operations the orchestrator needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// SlotResult is the outcome for one requested meme id. Captions are always
// populated from the assigned variant; ImageURL is nil when rendering or
// upload did not produce a public URL. FailureReason is empty for slots
// that rendered cleanly.
type SlotResult struct {
	MemeID        string
	TemplateID    int64
	Captions      [variants.MaxSlots]*string
	ImageURL      *string
	FailureReason string
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	cfg       *Config
	store     Store
	generator Generator
	catalog   Catalog
	images    ImageStore
	renderer  Renderer
	notifier  Notifier
	metrics   Observer
	tracer    Tracer
	logger    Logger
}

func New(cfg *Config, st Store, gen Generator, cat Catalog, images ImageStore, renderer Renderer, notifier Notifier, metrics Observer, tracer Tracer, logger Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		store:     st,
		generator: gen,
		catalog:   cat,
		images:    images,
		renderer:  renderer,
		notifier:  notifier,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}
}

// assignment is one ready-to-render combination from the content pool.
type assignment struct {
	tmpl    catalog.Template
	boxes   []catalog.Box
	variant variants.Variant
}

// Run executes a full batch. Results come back in the order of memeIDs.
// Slot-level failures are captured in the corresponding SlotResult; the
// returned error is non-nil only when the whole batch is unusable.
func (o *Orchestrator) Run(ctx context.Context, batchContext string, memeIDs []string) ([]SlotResult, error) {
	ctx, span := o.tracer.StartSpan(ctx, "meme-batch")
	defer span.End()
	batchStart := time.Now()

	if batchContext == "" {
		o.metrics.IncrementBatches("rejected")
		return nil, fmt.Errorf("%w: empty context", ErrValidation)
	}
	if len(memeIDs) == 0 {
		o.metrics.IncrementBatches("rejected")
		return nil, fmt.Errorf("%w: no meme ids", ErrValidation)
	}

	if err := o.store.VerifyMemeIDs(ctx, memeIDs); err != nil {
		o.metrics.IncrementBatches("rejected")
		o.tracer.RecordErrorOnSpan(span, err)
		if errors.Is(err, store.ErrUnknownMemeIDs) {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err)
		}
		return nil, err
	}

	pool, err := o.buildPool(ctx, batchContext)
	if err != nil {
		o.metrics.IncrementBatches("failed")
		o.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}
	o.tracer.SetAttributes(span, map[string]interface{}{
		"slots":     len(memeIDs),
		"pool_size": len(pool),
	})

	results := o.renderSlots(ctx, memeIDs, pool)

	if err := o.persist(ctx, results); err != nil {
		o.metrics.IncrementBatches("failed")
		o.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	o.announce(ctx, batchContext, results)

	o.metrics.IncrementBatches("completed")
	o.metrics.RecordStageDuration(batchStart, "batch")
	o.logger.Info("meme batch completed", nil, map[string]interface{}{
		"slots": len(results),
		"pool":  len(pool),
	})
	return results, nil
}

// buildPool runs goal generation, template search and caption generation,
// and flattens the output into the content pool. Search and generation
// failures for individual candidates are logged and skipped; the pool is
// only an error when it ends up empty.
func (o *Orchestrator) buildPool(ctx context.Context, batchContext string) ([]assignment, error) {
	goalStart := time.Now()
	goals, err := o.generator.GenerateGoals(ctx, batchContext, o.cfg.NumGoals)
	o.metrics.RecordStageDuration(goalStart, "goals")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: generating goals: %w", err)
	}
	if len(goals) == 0 {
		return nil, fmt.Errorf("%w: no goals from context", ErrNoContentGenerated)
	}

	searchStart := time.Now()
	found := make([][]catalog.Template, len(goals))
	eg, sctx := errgroup.WithContext(ctx)
	for i, goal := range goals {
		eg.Go(func() error {
			templates, err := o.catalog.FindSimilar(sctx, goal.Query(), o.cfg.TemplatesPerGoal)
			if err != nil {
				o.logger.Warn("template search failed for goal", err, map[string]interface{}{"goal": goal.Goal})
				return nil
			}
			found[i] = templates
			return nil
		})
	}
	_ = eg.Wait()
	o.metrics.RecordStageDuration(searchStart, "search")

	type candidate struct {
		goal  variants.Goal
		tmpl  catalog.Template
		boxes []catalog.Box
	}
	var candidates []candidate
	for i, goal := range goals {
		for _, tmpl := range found[i] {
			boxes := catalog.NormalizeBoxes(tmpl.RawBoxGeometry)
			if len(boxes) == 0 {
				boxes = fallbackBoxes(tmpl.BoxCount)
			}
			candidates = append(candidates, candidate{goal: goal, tmpl: tmpl, boxes: boxes})
		}
	}

	variantStart := time.Now()
	variantSets := make([][]variants.Variant, len(candidates))
	eg, vctx := errgroup.WithContext(ctx)
	for i, cand := range candidates {
		eg.Go(func() error {
			examples := o.examplesFor(vctx, cand.tmpl.ID)
			set, err := o.generator.GenerateVariants(vctx, cand.tmpl, cand.boxes, cand.goal, batchContext, examples, o.cfg.VariantsPerTemplate)
			if err != nil {
				o.logger.Warn("caption generation failed for template", err, map[string]interface{}{
					"template": cand.tmpl.Name,
				})
				return nil
			}
			variantSets[i] = set
			return nil
		})
	}
	_ = eg.Wait()
	o.metrics.RecordStageDuration(variantStart, "variants")

	var pool []assignment
	for i, cand := range candidates {
		for _, v := range variantSets[i] {
			pool = append(pool, assignment{tmpl: cand.tmpl, boxes: cand.boxes, variant: v})
		}
	}
	if len(pool) == 0 {
		return nil, ErrNoContentGenerated
	}
	return pool, nil
}

// examplesFor loads engagement history for a template. History is guidance
// only, so lookup failures degrade to an empty set.
func (o *Orchestrator) examplesFor(ctx context.Context, templateID int64) variants.Examples {
	liked, disliked, err := o.store.TemplateExamples(ctx, templateID)
	if err != nil {
		o.logger.Warn("loading template examples failed", err, map[string]interface{}{"template_id": templateID})
		return variants.Examples{}
	}
	return variants.Examples{
		MostLiked:    examplesFromMemes(liked, func(m store.Meme) int { return m.ThumbsUp }),
		MostDisliked: examplesFromMemes(disliked, func(m store.Meme) int { return m.ThumbsDown }),
	}
}

func examplesFromMemes(memes []store.Meme, score func(store.Meme) int) []variants.Example {
	out := make([]variants.Example, 0, len(memes))
	for _, m := range memes {
		var captions []string
		for _, c := range m.Captions() {
			if c != nil {
				captions = append(captions, *c)
			}
		}
		if len(captions) == 0 {
			continue
		}
		out = append(out, variants.Example{Captions: captions, Score: score(m)})
	}
	return out
}

// renderSlots assigns pool entries to meme ids round-robin and renders each
// slot concurrently. A slot failure never aborts its siblings.
func (o *Orchestrator) renderSlots(ctx context.Context, memeIDs []string, pool []assignment) []SlotResult {
	renderStart := time.Now()
	results := make([]SlotResult, len(memeIDs))

	var eg errgroup.Group
	for i, memeID := range memeIDs {
		asn := pool[i%len(pool)]
		eg.Go(func() error {
			results[i] = o.renderSlot(ctx, memeID, asn)
			return nil
		})
	}
	_ = eg.Wait()

	o.metrics.RecordStageDuration(renderStart, "render")
	return results
}

func (o *Orchestrator) renderSlot(ctx context.Context, memeID string, asn assignment) SlotResult {
	res := SlotResult{
		MemeID:     memeID,
		TemplateID: asn.tmpl.ID,
		Captions:   asn.variant.Captions,
	}

	fail := func(stage string, err error) SlotResult {
		res.FailureReason = stage
		o.metrics.IncrementSlots("failed")
		o.logger.Error("slot rendering failed", err, map[string]interface{}{
			"meme_id":  memeID,
			"template": asn.tmpl.Name,
			"stage":    stage,
		})
		return res
	}

	base, err := o.images.FetchTemplate(ctx, asn.tmpl.ImageRef)
	if err != nil {
		return fail("fetch", err)
	}

	// Captions are keyed by box id, not by the box's position: after
	// geometry normalization the boxes may be sparse or out of order.
	captions := make([]string, len(asn.boxes))
	for i, box := range asn.boxes {
		if box.ID < 1 || box.ID > variants.MaxSlots {
			continue
		}
		if c := asn.variant.Captions[box.ID-1]; c != nil {
			captions[i] = *c
		}
	}

	img, err := o.renderer.Render(base, captions, asn.boxes)
	if err != nil {
		return fail("render", err)
	}

	url, err := o.images.Upload(ctx, img, memeID)
	if err != nil {
		return fail("upload", err)
	}
	if url != "" {
		res.ImageURL = &url
	}

	o.metrics.IncrementSlots("rendered")
	return res
}

func (o *Orchestrator) persist(ctx context.Context, results []SlotResult) error {
	updates := make([]store.SlotUpdate, len(results))
	for i, r := range results {
		updates[i] = store.SlotUpdate{
			MemeID:     r.MemeID,
			TemplateID: r.TemplateID,
			Captions:   r.Captions,
			CDNURL:     r.ImageURL,
		}
	}
	if err := o.store.SaveSlots(ctx, updates); err != nil {
		return fmt.Errorf("orchestrator: persisting slots: %w", err)
	}
	return nil
}

func (o *Orchestrator) announce(ctx context.Context, batchContext string, results []SlotResult) {
	if o.notifier == nil {
		return
	}

	ev := events.BatchCompleted{
		ContextDigest: contextDigest(batchContext),
		CompletedAt:   time.Now().UTC(),
	}
	for _, r := range results {
		ev.SlotIDs = append(ev.SlotIDs, r.MemeID)
		if r.FailureReason == "" {
			ev.Rendered++
		} else {
			ev.Failed++
		}
	}

	if err := o.notifier.PublishBatchCompleted(ctx, ev, o.tracer.GetCarrier(ctx)); err != nil {
		o.logger.Warn("publishing batch completion event failed", err, nil)
	}
}

func contextDigest(batchContext string) string {
	sum := sha256.Sum256([]byte(batchContext))
	return hex.EncodeToString(sum[:])
}

// fallbackBoxes evenly stacks boxes down the image for templates whose
// geometry is missing or unreadable.
func fallbackBoxes(count int) []catalog.Box {
	if count <= 0 {
		count = 2
	}
	if count > variants.MaxSlots {
		count = variants.MaxSlots
	}

	boxes := make([]catalog.Box, count)
	band := 100.0 / float64(count)
	for i := range boxes {
		boxes[i] = catalog.Box{
			ID:     i + 1,
			X:      5,
			Y:      band*float64(i) + 5,
			Width:  90,
			Height: band - 10,
		}
	}
	return boxes
}
