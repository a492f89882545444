package catalog

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Geometry defaults for descriptors that omit size fields.
const (
	defaultBoxWidth  = 20.0
	defaultBoxHeight = 10.0
)

// NormalizeBoxes turns a raw box geometry document into a flat []Box.
//
// The catalog accumulated several encodings over time: a plain array of
// descriptor objects, that array serialized as a JSON string, the string
// wrapped in a single-key object, and a singleton array holding any of the
// above. Descriptors themselves are either objects or positional arrays
// [id, label, x, y, width, height].
//
// The function is total: any input yields a (possibly empty) slice, never an
// error. Descriptors that carry an id-like key with an uncoercible value are
// dropped; descriptors with no id-like key at all get their 1-based position.
func NormalizeBoxes(raw json.RawMessage) []Box {
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	items := unwrapGeometry(v, 0)
	if len(items) == 0 {
		return nil
	}

	// An array of nothing but scalars is a single positional descriptor.
	if allScalars(items) {
		if b, ok := boxFromPositional(items); ok {
			return []Box{b}
		}
		return nil
	}

	boxes := make([]Box, 0, len(items))
	for i, item := range items {
		switch d := item.(type) {
		case map[string]any:
			if b, ok := boxFromObject(d, i+1); ok {
				boxes = append(boxes, b)
			}
		case []any:
			if b, ok := boxFromPositional(d); ok {
				boxes = append(boxes, b)
			}
		}
	}
	return boxes
}

const maxUnwrapDepth = 8

// unwrapGeometry peels wrapper layers until it reaches the descriptor list.
func unwrapGeometry(v any, depth int) []any {
	if depth > maxUnwrapDepth {
		return nil
	}

	switch t := v.(type) {
	case string:
		var inner any
		if err := json.Unmarshal([]byte(t), &inner); err != nil {
			return nil
		}
		return unwrapGeometry(inner, depth+1)

	case map[string]any:
		if len(t) == 0 {
			return nil
		}
		// A single-key object is a wrapper around its value; anything
		// larger is one descriptor on its own.
		if len(t) == 1 {
			for _, inner := range t {
				if s, ok := inner.(string); ok {
					return unwrapGeometry(s, depth+1)
				}
				if l, ok := inner.([]any); ok {
					return unwrapGeometry(l, depth+1)
				}
			}
		}
		return []any{t}

	case []any:
		if len(t) == 1 {
			switch t[0].(type) {
			case string, []any:
				return unwrapGeometry(t[0], depth+1)
			}
		}
		return t
	}
	return nil
}

func allScalars(items []any) bool {
	for _, item := range items {
		switch item.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

// boxFromObject extracts a Box from a descriptor object. position is the
// 1-based index used when no id-like key is present.
func boxFromObject(d map[string]any, position int) (Box, bool) {
	b := Box{
		ID:     position,
		X:      0,
		Y:      0,
		Width:  defaultBoxWidth,
		Height: defaultBoxHeight,
	}

	if val, found := idValue(d); found {
		n, ok := coerceInt(val)
		if !ok {
			// An explicit id we cannot read means the descriptor
			// cannot be trusted.
			return Box{}, false
		}
		b.ID = n
	}

	for _, key := range []string{"label", "name", "text"} {
		if s, ok := d[key].(string); ok && s != "" {
			b.Label = s
			break
		}
	}

	if f, ok := coerceFloat(firstOf(d, "x", "left")); ok {
		b.X = f
	}
	if f, ok := coerceFloat(firstOf(d, "y", "top")); ok {
		b.Y = f
	}
	if f, ok := coerceFloat(firstOf(d, "width", "w")); ok {
		b.Width = f
	}
	if f, ok := coerceFloat(firstOf(d, "height", "h")); ok {
		b.Height = f
	}

	return b, true
}

// idValue finds the descriptor's id field. Exact spellings win; the
// substring fallback walks the keys in sorted order so the pick is
// deterministic, and skips the size fields, whose names also contain "id"
// (width).
func idValue(d map[string]any) (any, bool) {
	for _, key := range []string{"id", "box_id", "boxId", "box_index"} {
		if v, ok := d[key]; ok {
			return v, true
		}
	}

	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		lower := strings.ToLower(key)
		if lower == "width" || lower == "height" {
			continue
		}
		if strings.Contains(lower, "id") {
			return d[key], true
		}
	}
	return nil, false
}

// boxFromPositional extracts a Box from the [id, label, x, y, width, height]
// array form. Only the id is mandatory.
func boxFromPositional(d []any) (Box, bool) {
	if len(d) == 0 {
		return Box{}, false
	}

	id, ok := coerceInt(d[0])
	if !ok {
		return Box{}, false
	}

	b := Box{
		ID:     id,
		Width:  defaultBoxWidth,
		Height: defaultBoxHeight,
	}

	if len(d) > 1 {
		if s, ok := d[1].(string); ok {
			b.Label = s
		}
	}
	if len(d) > 2 {
		if f, ok := coerceFloat(d[2]); ok {
			b.X = f
		}
	}
	if len(d) > 3 {
		if f, ok := coerceFloat(d[3]); ok {
			b.Y = f
		}
	}
	if len(d) > 4 {
		if f, ok := coerceFloat(d[4]); ok {
			b.Width = f
		}
	}
	if len(d) > 5 {
		if f, ok := coerceFloat(d[5]); ok {
			b.Height = f
		}
	}
	return b, true
}

func firstOf(d map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := d[key]; ok {
			return v
		}
	}
	return nil
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
