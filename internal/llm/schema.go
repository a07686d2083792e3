package llm

import (
	"encoding/json"
	"fmt"
)

// SchemaFromSkeleton derives a JSON Schema from a template document. Every key of a
// template object is required, leaves keep their JSON type (null allowed), and arrays
// take their item shape from the first template element when there is one.
func SchemaFromSkeleton(skeleton []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(skeleton, &v); err != nil {
		return nil, fmt.Errorf("parse skeleton: %w", err)
	}
	return schemaFor(v), nil
}

func schemaFor(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		props := make(map[string]any, len(t))
		required := make([]string, 0, len(t))
		for k, child := range t {
			props[k] = schemaFor(child)
			required = append(required, k)
		}
		return map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		}
	case []any:
		s := map[string]any{"type": "array"}
		if len(t) > 0 {
			s["items"] = schemaFor(t[0])
		}
		return s
	case string:
		return map[string]any{"type": []string{"string", "null"}}
	case float64:
		return map[string]any{"type": []string{"number", "string", "null"}}
	case bool:
		return map[string]any{"type": []string{"boolean", "null"}}
	default:
		return map[string]any{}
	}
}
