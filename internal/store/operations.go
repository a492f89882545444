package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownMemeIDs means at least one requested slot has no pre-created row.
var ErrUnknownMemeIDs = errors.New("unknown meme ids")

// SlotUpdate carries everything the pipeline produced for one slot.
type SlotUpdate struct {
	MemeID     string
	TemplateID int64
	Captions   [7]*string

	// CDNURL is nil when the render or upload failed; captions are still
	// persisted in that case.
	CDNURL *string
}

// FeedbackSignal is an engagement vote on a published meme.
type FeedbackSignal string

const (
	FeedbackUp   FeedbackSignal = "up"
	FeedbackDown FeedbackSignal = "down"
)

// VerifyMemeIDs checks that every id has a pre-created row. Returns
// ErrUnknownMemeIDs naming the missing ones otherwise.
func (s *Store) VerifyMemeIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var found []string
	if err := s.db(ctx).Model(&Meme{}).Where("uuid IN ?", ids).Pluck("uuid", &found).Error; err != nil {
		return fmt.Errorf("store: verifying meme ids: %w", err)
	}

	if len(found) == len(ids) {
		return nil
	}

	known := make(map[string]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnknownMemeIDs, missing)
}

// TemplateExamples returns historical engagement examples for a template:
// up to 4 most liked and up to 4 most disliked memes that have text.
func (s *Store) TemplateExamples(ctx context.Context, templateID int64) (liked, disliked []Meme, err error) {
	err = s.db(ctx).Model(&Meme{}).
		Where("meme_template_id = ? AND text_box_1 IS NOT NULL AND thumbs_up > 0", templateID).
		Order("thumbs_up DESC").Limit(4).
		Find(&liked).Error
	if err != nil {
		return nil, nil, fmt.Errorf("store: loading liked examples: %w", err)
	}

	err = s.db(ctx).Model(&Meme{}).
		Where("meme_template_id = ? AND text_box_1 IS NOT NULL AND thumbs_down > 0", templateID).
		Order("thumbs_down DESC").Limit(4).
		Find(&disliked).Error
	if err != nil {
		return nil, nil, fmt.Errorf("store: loading disliked examples: %w", err)
	}
	return liked, disliked, nil
}

// SaveSlots persists the pipeline output for each slot. Slots with a CDN URL
// get the full update; slots without one keep meme_cdn_url untouched so a
// later retry can fill it. Each slot is written independently; one bad row
// does not block the rest, and the first error is returned after the pass.
func (s *Store) SaveSlots(ctx context.Context, updates []SlotUpdate) error {
	var firstErr error

	for _, u := range updates {
		values := map[string]interface{}{
			"meme_template_id": u.TemplateID,
		}
		for i, caption := range u.Captions {
			values[fmt.Sprintf("text_box_%d", i+1)] = caption
		}
		if u.CDNURL != nil {
			values["meme_cdn_url"] = *u.CDNURL
		}

		res := s.db(ctx).Model(&Meme{}).Where("uuid = ?", u.MemeID).Updates(values)
		if res.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf("store: saving slot %s: %w", u.MemeID, res.Error)
		}
	}
	return firstErr
}

// ApplyFeedback increments the engagement counter for a meme.
func (s *Store) ApplyFeedback(ctx context.Context, memeID string, signal FeedbackSignal) error {
	var column string
	switch signal {
	case FeedbackUp:
		column = "thumbs_up"
	case FeedbackDown:
		column = "thumbs_down"
	default:
		return fmt.Errorf("store: unknown feedback signal %q", signal)
	}

	res := s.db(ctx).Exec(
		fmt.Sprintf("UPDATE memes SET %s = %s + 1, updated_at = NOW() WHERE uuid = ?", column, column),
		memeID,
	)
	if res.Error != nil {
		return fmt.Errorf("store: applying feedback: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMemeIDs, memeID)
	}
	return nil
}

// ListTemplates returns all templates from the system of record.
func (s *Store) ListTemplates(ctx context.Context) ([]MemeTemplate, error) {
	var templates []MemeTemplate
	if err := s.db(ctx).Order("id").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("store: listing templates: %w", err)
	}
	return templates, nil
}

// GetMemes loads the rows for the given ids, in no particular order.
func (s *Store) GetMemes(ctx context.Context, ids []string) ([]Meme, error) {
	var memes []Meme
	if err := s.db(ctx).Where("uuid IN ?", ids).Find(&memes).Error; err != nil {
		return nil, fmt.Errorf("store: loading memes: %w", err)
	}
	return memes, nil
}
