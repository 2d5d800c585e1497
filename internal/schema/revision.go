package schema

// ElementTypes lists the accepted values of an element's "type" field, from
// the coarsest heading level to body text.
var ElementTypes = []string{
	"document_heading",
	"chapter_heading",
	"group_heading",
	"section_heading",
	"paragraph_text",
}

// ElementFields lists the optional structural fields an element may carry in
// addition to "type" and "text".
var ElementFields = []string{"chapter", "section", "slug", "paragraph"}

// Revision returns the JSON schema (draft 2020-12) describing a revision
// source document. Top-level objects and elements are closed: unknown keys
// fail validation. A fresh map is returned on every call.
func Revision() map[string]any {
	elementTypes := make([]any, 0, len(ElementTypes))
	for _, name := range ElementTypes {
		elementTypes = append(elementTypes, name)
	}

	elementProperties := map[string]any{
		"type": map[string]any{"enum": elementTypes},
		"text": map[string]any{"$ref": "#/$defs/text"},
	}
	for _, field := range ElementFields {
		elementProperties[field] = map[string]any{"type": "string"}
	}

	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"name":         map[string]any{"$ref": "#/$defs/text"},
			"code":         map[string]any{"type": "string"},
			"abbreviation": map[string]any{"type": "string"},
			"elements": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"$ref": "#/$defs/element"},
			},
		},
		"required":             []any{"name", "code", "abbreviation", "elements"},
		"additionalProperties": false,
		"$defs": map[string]any{
			"text": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sv": map[string]any{"type": "string"},
					"en": map[string]any{"type": "string"},
				},
				"required": []any{"sv", "en"},
			},
			"element": map[string]any{
				"type":                 "object",
				"properties":           elementProperties,
				"required":             []any{"type", "text"},
				"additionalProperties": false,
			},
		},
	}
}
