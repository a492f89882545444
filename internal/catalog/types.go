package catalog

import "encoding/json"

// Template is one meme template from the vector catalog.
type Template struct {
	ID          int64
	Name        string
	Description string

	// ImageRef locates the blank template image, either an absolute URL or a
	// key relative to the CDN base.
	ImageRef string

	// BoxCount is the declared number of text boxes.
	BoxCount int

	// RawBoxGeometry is the box layout exactly as stored, in any of its
	// historical encodings. Run it through NormalizeBoxes before use.
	RawBoxGeometry json.RawMessage

	// Similarity is the cosine score from the vector search, zero when the
	// template was fetched outside a search.
	Similarity float32
}

// Box is one normalized text region on a template. Coordinates and sizes are
// percentages of the image dimensions.
type Box struct {
	ID     int
	Label  string
	X      float64
	Y      float64
	Width  float64
	Height float64
}
