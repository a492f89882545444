package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memeulacra/memegen/internal/catalog"
	"github.com/memeulacra/memegen/internal/logger"
)

func grayCanvas(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{R: 128, G: 128, B: 128, A: 255}}, image.Point{}, draw.Src)
	return img
}

func newTestRenderer() *Renderer {
	return NewRenderer(Config{}, logger.NewNop())
}

func fullWidthBox(id int) catalog.Box {
	return catalog.Box{ID: id, X: 5, Y: 5, Width: 90, Height: 30}
}

func TestRenderValidation(t *testing.T) {
	r := newTestRenderer()

	_, err := r.Render(nil, []string{"a"}, []catalog.Box{fullWidthBox(1)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.Render(grayCanvas(400, 400), []string{"a", "b"}, []catalog.Box{fullWidthBox(1)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.Render(grayCanvas(400, 400), nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRenderDrawsWhiteTextWithDarkOutline(t *testing.T) {
	r := newTestRenderer()

	out, err := r.Render(grayCanvas(600, 400), []string{"HELLO"}, []catalog.Box{fullWidthBox(1)})
	require.NoError(t, err)

	// Count near-white and near-black pixels. Anti-aliasing means exact
	// values vary, so thresholds are used.
	var white, dark int
	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := out.At(x, y).RGBA()
			r8, g8, b8 := cr>>8, cg>>8, cb>>8
			if r8 > 250 && g8 > 250 && b8 > 250 {
				white++
			}
			if r8 < 60 && g8 < 60 && b8 < 60 {
				dark++
			}
		}
	}

	assert.Greater(t, white, 50, "fill pixels expected")
	assert.Greater(t, dark, 50, "outline pixels expected")
}

func TestRenderOutlineStaysNearFill(t *testing.T) {
	r := newTestRenderer()

	out, err := r.Render(grayCanvas(600, 400), []string{"M"}, []catalog.Box{fullWidthBox(1)})
	require.NoError(t, err)

	rgba, ok := out.(*image.RGBA)
	if !ok {
		b := out.Bounds()
		tmp := image.NewRGBA(b)
		draw.Draw(tmp, b, out, b.Min, draw.Src)
		rgba = tmp
	}

	isWhite := func(x, y int) bool {
		c := rgba.RGBAAt(x, y)
		return c.R > 250 && c.G > 250 && c.B > 250
	}
	isDark := func(x, y int) bool {
		c := rgba.RGBAAt(x, y)
		return c.R < 60 && c.G < 60 && c.B < 60
	}

	// Every dark pixel must be within a few pixels of a white one; the
	// outline hugs the glyph.
	const reach = outlineRadius + 3
	bounds := rgba.Bounds()
	checked := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !isDark(x, y) {
				continue
			}
			checked++
			foundWhite := false
			for dy := -reach; dy <= reach && !foundWhite; dy++ {
				for dx := -reach; dx <= reach && !foundWhite; dx++ {
					nx, ny := x+dx, y+dy
					if nx >= bounds.Min.X && nx < bounds.Max.X && ny >= bounds.Min.Y && ny < bounds.Max.Y && isWhite(nx, ny) {
						foundWhite = true
					}
				}
			}
			assert.True(t, foundWhite, "dark pixel at (%d,%d) has no white neighbor", x, y)
			if t.Failed() {
				return
			}
		}
	}
	assert.Greater(t, checked, 0, "expected outline pixels to check")
}

func TestRenderEmptyCaptionLeavesBoxUntouched(t *testing.T) {
	r := newTestRenderer()

	base := grayCanvas(400, 300)
	out, err := r.Render(base, []string{""}, []catalog.Box{fullWidthBox(1)})
	require.NoError(t, err)

	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 7 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 7 {
			cr, cg, cb, _ := out.At(x, y).RGBA()
			assert.Equal(t, uint32(128), cr>>8)
			assert.Equal(t, uint32(128), cg>>8)
			assert.Equal(t, uint32(128), cb>>8)
			if t.Failed() {
				return
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := newTestRenderer()

	boxes := []catalog.Box{fullWidthBox(1)}
	first, err := r.Render(grayCanvas(400, 300), []string{"same input"}, boxes)
	require.NoError(t, err)
	second, err := r.Render(grayCanvas(400, 300), []string{"same input"}, boxes)
	require.NoError(t, err)

	fb, sb := first.Bounds(), second.Bounds()
	require.Equal(t, fb, sb)
	for y := fb.Min.Y; y < fb.Max.Y; y += 3 {
		for x := fb.Min.X; x < fb.Max.X; x += 3 {
			require.Equal(t, first.At(x, y), second.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestFitCaptionMonotonicity(t *testing.T) {
	dc := gg.NewContext(600, 400)

	short := "HI"
	long := "this caption has considerably more words to place than the short one does"

	box := pixelBox{x: 0, y: 0, w: 500, h: 120}

	shortSize, _, shortFits, err := fitCaption(dc, short, box)
	require.NoError(t, err)
	longSize, _, longFits, err := fitCaption(dc, long, box)
	require.NoError(t, err)

	require.True(t, shortFits)
	require.True(t, longFits)
	assert.GreaterOrEqual(t, shortSize, longSize, "more text cannot get a bigger font")
}

func TestLinesFitHeightBudget(t *testing.T) {
	dc := gg.NewContext(600, 400)
	face, err := faceForSize(40)
	require.NoError(t, err)
	dc.SetFontFace(face)

	fh := dc.FontHeight()

	// One line carries no spacing, only the safety margin.
	one := []string{"A"}
	assert.True(t, linesFit(dc, one, 600, fh*(1+heightSafetyMargin)+1))
	assert.False(t, linesFit(dc, one, 600, fh*(1+heightSafetyMargin)-1))

	// Two lines carry exactly one gap between them.
	two := []string{"A", "B"}
	total := 2*fh + fh*lineSpacingFactor
	assert.True(t, linesFit(dc, two, 600, total*(1+heightSafetyMargin)+1))
	assert.False(t, linesFit(dc, two, 600, total*(1+heightSafetyMargin)-1))

	assert.True(t, linesFit(dc, nil, 600, 0))
}

func TestFitCaptionReturnsLargestFittingSize(t *testing.T) {
	dc := gg.NewContext(600, 400)

	box := pixelBox{x: 0, y: 0, w: 400, h: 60}
	size, lines, fits, err := fitCaption(dc, "snug fit", box)
	require.NoError(t, err)
	require.True(t, fits)
	require.NotEmpty(t, lines)
	require.Less(t, size, fontSizeMax)

	// The search descends a point at a time, so one point larger must
	// already overflow the box.
	face, err := faceForSize(size + 1)
	require.NoError(t, err)
	dc.SetFontFace(face)
	assert.False(t, linesFit(dc, wrapText(dc, "snug fit", box.w), box.w, box.h))
}

func TestFitCaptionFallback(t *testing.T) {
	dc := gg.NewContext(600, 400)

	// A tiny box that nothing fits into.
	box := pixelBox{x: 0, y: 0, w: 8, h: 4}

	size, lines, fits, err := fitCaption(dc, "far too much text for this box", box)
	require.NoError(t, err)
	assert.False(t, fits)
	assert.Equal(t, fontSizeFallback, size)
	assert.NotEmpty(t, lines, "fallback still produces drawable lines")
}

func TestWrapTextGreedy(t *testing.T) {
	dc := gg.NewContext(600, 400)
	face, err := faceForSize(20)
	require.NoError(t, err)
	dc.SetFontFace(face)

	lines := wrapText(dc, "one two three four five six seven eight", 120)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		w, _ := dc.MeasureString(line)
		// A single word may overflow; multi-word lines must fit.
		if len(splitWords(line)) > 1 {
			assert.LessOrEqual(t, w, 120.0, "line %q", line)
		}
	}

	// Round-trip: no words lost.
	var joined []string
	for _, line := range lines {
		joined = append(joined, splitWords(line)...)
	}
	assert.Equal(t, splitWords("one two three four five six seven eight"), joined)
}

func splitWords(s string) []string {
	var out []string
	word := ""
	for _, r := range s {
		if r == ' ' {
			if word != "" {
				out = append(out, word)
			}
			word = ""
			continue
		}
		word += string(r)
	}
	if word != "" {
		out = append(out, word)
	}
	return out
}

func TestRenderDebugBoxes(t *testing.T) {
	r := NewRenderer(Config{DebugBoxes: true}, logger.NewNop())

	out, err := r.Render(grayCanvas(400, 300), []string{""}, []catalog.Box{fullWidthBox(1)})
	require.NoError(t, err)

	// The debug rectangle leaves red pixels behind.
	red := 0
	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := out.At(x, y).RGBA()
			if cr>>8 > 200 && cg>>8 < 80 && cb>>8 < 80 {
				red++
			}
		}
	}
	assert.Greater(t, red, 100)
}
