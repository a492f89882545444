package catalog

import (
	"encoding/json"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// Payload field names used in the template collection.
const (
	fieldTemplateID  = "template_id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldImageRef    = "image_ref"
	fieldBoxCount    = "box_count"
	fieldBoxGeometry = "box_geometry"
)

// payloadFromTemplate flattens a Template into a Qdrant payload map.
// Geometry is stored as its raw JSON string, preserving whatever encoding
// the source had.
func payloadFromTemplate(t Template) map[string]any {
	payload := map[string]any{
		fieldTemplateID:  t.ID,
		fieldName:        t.Name,
		fieldDescription: t.Description,
		fieldImageRef:    t.ImageRef,
		fieldBoxCount:    t.BoxCount,
	}
	if len(t.RawBoxGeometry) > 0 {
		payload[fieldBoxGeometry] = string(t.RawBoxGeometry)
	}
	return payload
}

// templateFromPayload reads a Template back out of a Qdrant payload.
// The geometry field may be a JSON string or a structured value; either way
// it ends up as raw JSON for NormalizeBoxes to deal with.
func templateFromPayload(payload map[string]*qdrant.Value) (Template, error) {
	t := Template{}

	id, ok := intFromValue(payload[fieldTemplateID])
	if !ok {
		return Template{}, fmt.Errorf("payload missing %s", fieldTemplateID)
	}
	t.ID = id

	t.Name = payload[fieldName].GetStringValue()
	t.Description = payload[fieldDescription].GetStringValue()
	t.ImageRef = payload[fieldImageRef].GetStringValue()

	if n, ok := intFromValue(payload[fieldBoxCount]); ok {
		t.BoxCount = int(n)
	}

	if geo, ok := payload[fieldBoxGeometry]; ok {
		raw, err := rawJSONFromValue(geo)
		if err != nil {
			return Template{}, fmt.Errorf("unreadable %s: %w", fieldBoxGeometry, err)
		}
		t.RawBoxGeometry = raw
	}

	return t, nil
}

func intFromValue(v *qdrant.Value) (int64, bool) {
	if v == nil {
		return 0, false
	}
	switch k := v.GetKind().(type) {
	case *qdrant.Value_IntegerValue:
		return k.IntegerValue, true
	case *qdrant.Value_DoubleValue:
		return int64(k.DoubleValue), true
	}
	return 0, false
}

// rawJSONFromValue converts a payload value into raw JSON. Strings are taken
// verbatim (they already hold serialized geometry); structured values are
// converted to plain Go values and re-marshaled.
func rawJSONFromValue(v *qdrant.Value) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
		return json.RawMessage(s.StringValue), nil
	}

	plain := valueToAny(v)
	data, err := json.Marshal(plain)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// valueToAny recursively converts a Qdrant payload value into plain Go types.
func valueToAny(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch k := v.GetKind().(type) {
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_BoolValue:
		return k.BoolValue
	case *qdrant.Value_IntegerValue:
		return k.IntegerValue
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_ListValue:
		items := make([]any, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			items = append(items, valueToAny(item))
		}
		return items
	case *qdrant.Value_StructValue:
		fields := k.StructValue.GetFields()
		out := make(map[string]any, len(fields))
		for key, item := range fields {
			out[key] = valueToAny(item)
		}
		return out
	}
	return nil
}
