package compositor

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/fogleman/gg"

	"github.com/memeulacra/memegen/internal/catalog"
)

// ErrValidation marks inputs the renderer cannot work with: nil image,
// caption/box count mismatch, empty box list.
var ErrValidation = errors.New("invalid render input")

// Fitting constants. The search walks font sizes downward until the wrapped
// caption fits; when even the minimum overflows, the fallback size is used
// and the text is drawn anyway.
const (
	fontSizeMax      = 200.0
	fontSizeMin      = 10.0
	fontSizeFallback = 40.0

	// Vertical gap between lines, as a fraction of the line height.
	lineSpacingFactor = 0.2

	// The total text height, inflated by this margin, must stay inside
	// the box.
	heightSafetyMargin = 0.2

	// Outline is drawn at every offset within this Chebyshev radius.
	outlineRadius = 3
)

// Logger defines the logging operations the compositor package needs.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Renderer draws captions onto template images.
type Renderer struct {
	cfg    Config
	logger Logger
}

func NewRenderer(cfg Config, logger Logger) *Renderer {
	return &Renderer{cfg: cfg, logger: logger}
}

// Render draws captions[i] into boxes[i] on a copy of base and returns the
// result. Empty captions leave their box untouched. The slices must be the
// same length and non-empty.
func (r *Renderer) Render(base image.Image, captions []string, boxes []catalog.Box) (image.Image, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base image", ErrValidation)
	}
	if len(boxes) == 0 {
		return nil, fmt.Errorf("%w: no boxes", ErrValidation)
	}
	if len(captions) != len(boxes) {
		return nil, fmt.Errorf("%w: %d captions for %d boxes", ErrValidation, len(captions), len(boxes))
	}

	dc := gg.NewContextForImage(base)
	imgW := float64(dc.Width())
	imgH := float64(dc.Height())

	for i, box := range boxes {
		px := pixelBox{
			x: box.X / 100 * imgW,
			y: box.Y / 100 * imgH,
			w: box.Width / 100 * imgW,
			h: box.Height / 100 * imgH,
		}

		if r.cfg.DebugBoxes {
			drawDebugBox(dc, px, box.ID)
		}

		caption := strings.TrimSpace(captions[i])
		if caption == "" {
			continue
		}

		if err := r.drawCaption(dc, caption, px); err != nil {
			return nil, fmt.Errorf("compositor: box %d: %w", box.ID, err)
		}
	}

	return dc.Image(), nil
}

type pixelBox struct {
	x, y, w, h float64
}

// fitCaption finds the largest font size at which the wrapped caption fits
// inside the box, walking from fontSizeMax down to fontSizeMin. It returns
// the size and the wrapped lines; fits reports whether anything fit. Callers
// fall back to fontSizeFallback when it did not.
func fitCaption(dc *gg.Context, caption string, box pixelBox) (size float64, lines []string, fits bool, err error) {
	for size = fontSizeMax; size >= fontSizeMin; size-- {
		face, ferr := faceForSize(size)
		if ferr != nil {
			return 0, nil, false, ferr
		}
		dc.SetFontFace(face)

		lines = wrapText(dc, caption, box.w)
		if linesFit(dc, lines, box.w, box.h) {
			return size, lines, true, nil
		}
	}

	face, ferr := faceForSize(fontSizeFallback)
	if ferr != nil {
		return 0, nil, false, ferr
	}
	dc.SetFontFace(face)
	return fontSizeFallback, wrapText(dc, caption, box.w), false, nil
}

// linesFit checks the block against the box. Spacing sits between lines
// only, so n lines carry n-1 gaps; the total is then inflated by the
// safety margin before comparing against the box height.
func linesFit(dc *gg.Context, lines []string, maxWidth, boxHeight float64) bool {
	if len(lines) == 0 {
		return true
	}
	fh := dc.FontHeight()
	total := float64(len(lines))*fh + float64(len(lines)-1)*fh*lineSpacingFactor
	if total*(1+heightSafetyMargin) > boxHeight {
		return false
	}
	for _, line := range lines {
		if w, _ := dc.MeasureString(line); w > maxWidth {
			return false
		}
	}
	return true
}

// wrapText greedily packs words into lines no wider than maxWidth. A single
// word wider than the box gets its own line rather than being split.
func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if w, _ := dc.MeasureString(candidate); w <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// drawCaption fits and draws one caption: black outline at every offset
// within the outline radius, then the white fill on top. Text is
// left-aligned and anchored to the top of the box.
func (r *Renderer) drawCaption(dc *gg.Context, caption string, box pixelBox) error {
	size, lines, fits, err := fitCaption(dc, caption, box)
	if err != nil {
		return err
	}
	if !fits {
		r.logger.Debug("caption does not fit its box, drawing at fallback size", nil, map[string]interface{}{
			"font_size": size,
			"lines":     len(lines),
		})
	}

	lineHeight := dc.FontHeight() * (1 + lineSpacingFactor)

	for li, line := range lines {
		y := box.y + float64(li)*lineHeight

		dc.SetRGB(0, 0, 0)
		for dy := -outlineRadius; dy <= outlineRadius; dy++ {
			for dx := -outlineRadius; dx <= outlineRadius; dx++ {
				dc.DrawStringAnchored(line, box.x+float64(dx), y+float64(dy), 0, 1)
			}
		}

		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(line, box.x, y, 0, 1)
	}
	return nil
}

func drawDebugBox(dc *gg.Context, box pixelBox, id int) {
	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(3)
	dc.DrawRectangle(box.x, box.y, box.w, box.h)
	dc.Stroke()
	dc.DrawStringAnchored(fmt.Sprintf("Box %d", id), box.x+4, box.y+4, 0, 1)
}
