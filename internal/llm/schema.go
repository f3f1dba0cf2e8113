package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mudassirkhan-17/policyqc/internal/common"
)

// BuildValidationReportSchema returns the JSON-Schema a validation report
// must satisfy, as a generic map. Each key in validationKeys becomes a
// required array of entries carrying at least a status; summary is required
// but its counts are never trusted (they are recomputed downstream).
func BuildValidationReportSchema(validationKeys []string) map[string]any {
	props := map[string]any{
		"summary":  map[string]any{"type": "object"},
		"qc_notes": map[string]any{"type": []string{"string", "null"}},
	}
	required := []string{"summary"}
	for _, key := range validationKeys {
		props[key] = validationArrayProp()
		required = append(required, key)
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func validationArrayProp() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{
					"type": "string",
					"enum": []string{"MATCH", "MISMATCH", "NOT_FOUND"},
				},
			},
			"required": []string{"status"},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return common.NewAppError("SCHEMA_VALIDATION_ERROR", err.Error(), common.ErrValidation)
	}
	return nil
}
