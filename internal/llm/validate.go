package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := compile(schemaMap)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

func compile(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ShapeChecker reports answers that stray from the skeleton. It never rejects them.
type ShapeChecker struct {
	schema map[string]any
	logger *slog.Logger
}

func NewShapeChecker(skeleton []byte, logger *slog.Logger) (*ShapeChecker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := SchemaFromSkeleton(skeleton)
	if err != nil {
		return nil, err
	}
	if _, err := compile(schema); err != nil {
		return nil, err
	}
	return &ShapeChecker{schema: schema, logger: logger}, nil
}

// Check logs a warning when answer does not match the skeleton and reports whether it did.
func (s *ShapeChecker) Check(doc, answer string) bool {
	if err := ValidateJSONAgainstSchema(s.schema, []byte(answer)); err != nil {
		s.logger.Warn("llm.shape.mismatch", "doc", doc, "error", err)
		return false
	}
	return true
}
