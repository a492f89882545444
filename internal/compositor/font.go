package compositor

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// The caption font ships in the binary so rendering never depends on
// filesystem fonts.
var (
	parseFontOnce sync.Once
	parsedFont    *opentype.Font
	parseFontErr  error
)

func captionFont() (*opentype.Font, error) {
	parseFontOnce.Do(func() {
		parsedFont, parseFontErr = opentype.Parse(gobold.TTF)
	})
	if parseFontErr != nil {
		return nil, fmt.Errorf("compositor: parsing caption font: %w", parseFontErr)
	}
	return parsedFont, nil
}

// faceForSize creates a font face at the given point size.
func faceForSize(size float64) (font.Face, error) {
	f, err := captionFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: building font face at %gpt: %w", size, err)
	}
	return face, nil
}
