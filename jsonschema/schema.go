package jsonschema

import "github.com/reoring/schemagen"

// Schema is a minimal JSON Schema representation used for export.
// It covers the vocabulary the generator understands.
type Schema struct {
	// Core
	Type string   `json:"type" yaml:"type"`
	Enum []string `json:"enum,omitempty" yaml:"enum,omitempty"`

	// Numeric
	Minimum          *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`

	// String
	MinLength *int `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`

	// Object
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty" yaml:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`
}

// Export projects a schema tree into its JSON Schema representation.
// Nil nodes export as nil.
func Export(s schemagen.Schema) *Schema {
	switch t := s.(type) {
	case *schemagen.Integer:
		if t == nil {
			return nil
		}
		return &Schema{
			Type:             "integer",
			Minimum:          intToFloat(t.Minimum),
			Maximum:          intToFloat(t.Maximum),
			ExclusiveMinimum: intToFloat(t.ExclusiveMinimum),
			ExclusiveMaximum: intToFloat(t.ExclusiveMaximum),
		}
	case *schemagen.Number:
		if t == nil {
			return nil
		}
		return &Schema{
			Type:             "number",
			Minimum:          t.Minimum,
			Maximum:          t.Maximum,
			ExclusiveMinimum: t.ExclusiveMinimum,
			ExclusiveMaximum: t.ExclusiveMaximum,
		}
	case *schemagen.String:
		if t == nil {
			return nil
		}
		return &Schema{Type: "string", MinLength: t.MinLength, MaxLength: t.MaxLength, Enum: t.Enum}
	case *schemagen.Boolean:
		if t == nil {
			return nil
		}
		return &Schema{Type: "boolean"}
	case *schemagen.Array:
		if t == nil {
			return nil
		}
		return &Schema{Type: "array", MinItems: t.MinItems, MaxItems: t.MaxItems, UniqueItems: t.UniqueItems, Items: Export(t.Items)}
	case *schemagen.Object:
		if t == nil {
			return nil
		}
		out := &Schema{Type: "object", Required: t.Required}
		if len(t.Properties) > 0 {
			out.Properties = make(map[string]*Schema, len(t.Properties))
			for _, p := range t.Properties {
				out.Properties[p.Name] = Export(p.Schema)
			}
		}
		return out
	}
	return nil
}

func intToFloat(p *int64) *float64 {
	if p == nil {
		return nil
	}
	f := float64(*p)
	return &f
}
