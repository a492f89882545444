package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBoxesPlainArray(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": 1, "label": "top", "x": 5, "y": 5, "width": 90, "height": 20},
		{"id": 2, "label": "bottom", "x": 5, "y": 75, "width": 90, "height": 20}
	]`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 2)
	assert.Equal(t, Box{ID: 1, Label: "top", X: 5, Y: 5, Width: 90, Height: 20}, boxes[0])
	assert.Equal(t, Box{ID: 2, Label: "bottom", X: 5, Y: 75, Width: 90, Height: 20}, boxes[1])
}

func TestNormalizeBoxesSerializedString(t *testing.T) {
	// The whole array serialized as one JSON string.
	raw := json.RawMessage(`"[{\"id\": 1, \"x\": 10, \"y\": 10, \"width\": 80, \"height\": 15}]"`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 1)
	assert.Equal(t, 1, boxes[0].ID)
	assert.Equal(t, 80.0, boxes[0].Width)
}

func TestNormalizeBoxesSingleKeyWrapper(t *testing.T) {
	// The serialized array wrapped in a single-key object.
	raw := json.RawMessage(`{"boxes": "[{\"id\": 3, \"label\": \"caption\"}]"}`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 1)
	assert.Equal(t, 3, boxes[0].ID)
	assert.Equal(t, "caption", boxes[0].Label)
	// Size defaults apply when the descriptor omits them.
	assert.Equal(t, defaultBoxWidth, boxes[0].Width)
	assert.Equal(t, defaultBoxHeight, boxes[0].Height)
}

func TestNormalizeBoxesSingletonArrayOfString(t *testing.T) {
	raw := json.RawMessage(`["[{\"id\": 1}, {\"id\": 2}]"]`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 2)
	assert.Equal(t, 1, boxes[0].ID)
	assert.Equal(t, 2, boxes[1].ID)
}

func TestNormalizeBoxesPositionalDescriptors(t *testing.T) {
	raw := json.RawMessage(`[[1, "top", 5, 5, 90, 20], [2, "bottom", 5, 75, 90, 20]]`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 2)
	assert.Equal(t, Box{ID: 1, Label: "top", X: 5, Y: 5, Width: 90, Height: 20}, boxes[0])
}

func TestNormalizeBoxesBareScalarArrayIsOneDescriptor(t *testing.T) {
	// A flat scalar array is a single positional descriptor, not a list.
	raw := json.RawMessage(`[4, "solo", 10, 20, 50, 12]`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 1)
	assert.Equal(t, Box{ID: 4, Label: "solo", X: 10, Y: 20, Width: 50, Height: 12}, boxes[0])
}

func TestNormalizeBoxesMissingIDFallsBackToPosition(t *testing.T) {
	raw := json.RawMessage(`[{"label": "first"}, {"label": "second"}]`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 2)
	assert.Equal(t, 1, boxes[0].ID)
	assert.Equal(t, 2, boxes[1].ID)
}

func TestNormalizeBoxesUncoercibleIDDropsDescriptor(t *testing.T) {
	raw := json.RawMessage(`[{"id": "??", "label": "bad"}, {"id": 2, "label": "good"}]`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 1)
	assert.Equal(t, "good", boxes[0].Label)
}

func TestNormalizeBoxesIDNotConfusedWithSizeFields(t *testing.T) {
	// "width" contains "id"; the exact id key must win every time, not
	// whichever key map iteration happens to visit first.
	raw := json.RawMessage(`[{"id": 1, "x": 10, "y": 10, "width": 80, "height": 30}]`)

	for i := 0; i < 100; i++ {
		boxes := NormalizeBoxes(raw)
		require.Len(t, boxes, 1)
		require.Equal(t, 1, boxes[0].ID, "iteration %d", i)
	}

	// Without an exact spelling the fallback still skips size fields.
	raw = json.RawMessage(`[{"template_id": 4, "width": 80, "height": 30}]`)
	for i := 0; i < 100; i++ {
		boxes := NormalizeBoxes(raw)
		require.Len(t, boxes, 1)
		require.Equal(t, 4, boxes[0].ID, "iteration %d", i)
	}
}

func TestNormalizeBoxesStringCoercions(t *testing.T) {
	raw := json.RawMessage(`[{"id": "7", "x": "12.5", "width": "60"}]`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 1)
	assert.Equal(t, 7, boxes[0].ID)
	assert.Equal(t, 12.5, boxes[0].X)
	assert.Equal(t, 60.0, boxes[0].Width)
}

func TestNormalizeBoxesShortAliases(t *testing.T) {
	raw := json.RawMessage(`[{"id": 1, "w": 33, "h": 44, "left": 3, "top": 4}]`)

	boxes := NormalizeBoxes(raw)
	require.Len(t, boxes, 1)
	assert.Equal(t, 33.0, boxes[0].Width)
	assert.Equal(t, 44.0, boxes[0].Height)
	assert.Equal(t, 3.0, boxes[0].X)
	assert.Equal(t, 4.0, boxes[0].Y)
}

func TestNormalizeBoxesGarbageInputs(t *testing.T) {
	for name, raw := range map[string]json.RawMessage{
		"empty":          nil,
		"not json":       json.RawMessage(`{{{`),
		"number":         json.RawMessage(`42`),
		"empty array":    json.RawMessage(`[]`),
		"empty object":   json.RawMessage(`{}`),
		"string garbage": json.RawMessage(`"not a geometry"`),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, NormalizeBoxes(raw))
		})
	}
}

func TestNormalizeBoxesIdempotent(t *testing.T) {
	variants := []json.RawMessage{
		json.RawMessage(`[{"id": 1, "x": 5, "y": 5, "width": 90, "height": 20}]`),
		json.RawMessage(`"[{\"id\": 1, \"x\": 5, \"y\": 5, \"width\": 90, \"height\": 20}]"`),
		json.RawMessage(`{"geometry": "[{\"id\": 1, \"x\": 5, \"y\": 5, \"width\": 90, \"height\": 20}]"}`),
		json.RawMessage(`["[{\"id\": 1, \"x\": 5, \"y\": 5, \"width\": 90, \"height\": 20}]"]`),
	}

	want := []Box{{ID: 1, X: 5, Y: 5, Width: 90, Height: 20}}
	for i, raw := range variants {
		assert.Equal(t, want, NormalizeBoxes(raw), "variant %d", i)
	}
}

func TestTemplateFromPayloadRoundTrip(t *testing.T) {
	tmpl := Template{
		ID:             17,
		Name:           "distracted",
		Description:    "a choice between two options",
		ImageRef:       "templates/distracted.jpg",
		BoxCount:       3,
		RawBoxGeometry: json.RawMessage(`[{"id":1},{"id":2},{"id":3}]`),
	}

	payload := payloadFromTemplate(tmpl)
	assert.Equal(t, int64(17), payload[fieldTemplateID])
	assert.Equal(t, `[{"id":1},{"id":2},{"id":3}]`, payload[fieldBoxGeometry])
}
