package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/avezina/propdocs/internal/core/domain"
)

var compiledSchemas = func() map[domain.DocumentType]*jsonschema.Schema {
	out := make(map[domain.DocumentType]*jsonschema.Schema, len(domain.KnownTypes()))
	for _, t := range domain.KnownTypes() {
		out[t] = mustCompile(t)
	}
	return out
}()

// Validate checks a cleaned field map against the type's schema: every
// field present, no extras, string fields string-or-null, number fields
// number-or-null. A violation means the model result is rejected whole.
func Validate(t domain.DocumentType, fields map[string]any) error {
	compiled, ok := compiledSchemas[t]
	if !ok {
		return domain.WrapError(domain.ErrUnknownDocumentType, "schema validate", fmt.Errorf("no entity schema for type %q", t))
	}
	if err := compiled.Validate(normalize(fields)); err != nil {
		return fmt.Errorf("entity fields do not match %s schema: %w", t, err)
	}
	return nil
}

// normalize rewrites the map into the shapes encoding/json produces, which
// is what the validator expects (ints become float64 and so on).
func normalize(fields map[string]any) any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch n := v.(type) {
		case int:
			out[k] = float64(n)
		case int64:
			out[k] = float64(n)
		case float32:
			out[k] = float64(n)
		case json.Number:
			if f, err := n.Float64(); err == nil {
				out[k] = f
			} else {
				out[k] = n.String()
			}
		default:
			out[k] = v
		}
	}
	return out
}

func mustCompile(t domain.DocumentType) *jsonschema.Schema {
	specs := fieldsByType[t]

	required := make([]any, len(specs))
	properties := make(map[string]any, len(specs))
	for i, f := range specs {
		required[i] = f.Name
		jsonType := "string"
		if f.Kind == KindNumber {
			jsonType = "number"
		}
		properties[f.Name] = map[string]any{
			"type": []any{jsonType, "null"},
		}
	}

	doc := map[string]any{
		"type":                 "object",
		"required":             required,
		"additionalProperties": false,
		"properties":           properties,
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("marshal %s schema: %v", t, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("add %s schema: %v", t, err))
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", t, err))
	}
	return compiled
}
