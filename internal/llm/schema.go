package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docnamer/internal/metadata"
	"github.com/joseph-ayodele/docnamer/internal/naming"
)

// BuildAnalysisJSONSchema returns the JSON-Schema for a normalized analysis
// response as a generic map. Keyword bounds are the decode-side window.
func BuildAnalysisJSONSchema() map[string]any {
	str := func(min int) map[string]any {
		return map[string]any{"type": "string", "minLength": min, "maxLength": naming.MaxComponentLen}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"category":     str(1),
			"company":      str(0),
			"documentType": str(0),
			"keywords": map[string]any{
				"type":     "array",
				"maxItems": metadata.MaxKeywords,
				"items": map[string]any{
					"type":      "string",
					"minLength": MinKeywordLen,
					"maxLength": MaxKeywordLen,
				},
			},
			"referenceNumber": str(1),
			"confidence":      map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
		"required": []string{"category", "company", "documentType", "keywords", "confidence"},
	}
}

var analysisSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return CompileSchema("analysis.json", BuildAnalysisJSONSchema())
})

// CompileSchema compiles a schema map under the given resource name.
func CompileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSON validates data against schema.
func ValidateJSON(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
