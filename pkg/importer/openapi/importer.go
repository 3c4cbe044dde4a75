// Package openapi builds form definitions from OpenAPI component schemas so
// existing API documents can seed a form instead of a generated description.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Options configures document loading.
type Options struct {
	// ResolveReferences allows external $ref resolution during load.
	ResolveReferences bool
}

// Importer converts one named component schema into a FormDefinition.
type Importer struct {
	options Options
}

// New constructs an Importer with the given options.
func New(options Options) *Importer {
	return &Importer{options: options}
}

// Import loads an OpenAPI document and converts the named component schema
// into a form definition. Properties map onto field kinds: enums become
// selects, booleans become checkboxes, and strings keep their format as the
// raw field type so email/date inputs survive the conversion.
func (i *Importer) Import(ctx context.Context, data []byte, schemaName string) (schema.FormDefinition, error) {
	if len(data) == 0 {
		return schema.FormDefinition{}, errors.New("openapi importer: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.options.ResolveReferences,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return schema.FormDefinition{}, fmt.Errorf("openapi importer: load document: %w", err)
	}

	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return schema.FormDefinition{}, errors.New("openapi importer: document has no component schemas")
	}
	ref, ok := doc.Components.Schemas[schemaName]
	if !ok || ref == nil || ref.Value == nil {
		return schema.FormDefinition{}, fmt.Errorf("openapi importer: schema %q not found", schemaName)
	}
	target := ref.Value

	def := schema.FormDefinition{
		FormTitle:   firstNonEmpty(target.Title, schemaName),
		FormHeading: strings.TrimSpace(target.Description),
	}
	if def.FormHeading == "" && doc.Info != nil {
		def.FormHeading = strings.TrimSpace(doc.Info.Description)
	}

	required := make(map[string]bool, len(target.Required))
	for _, name := range target.Required {
		required[name] = true
	}

	names := make([]string, 0, len(target.Properties))
	for name := range target.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := target.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		def.Fields = append(def.Fields, fieldFromProperty(name, prop.Value, required[name]))
	}

	if len(def.Fields) == 0 {
		return schema.FormDefinition{}, fmt.Errorf("openapi importer: schema %q has no usable properties", schemaName)
	}
	return def, nil
}

func fieldFromProperty(name string, prop *openapi3.Schema, required bool) schema.FieldDefinition {
	label := firstNonEmpty(prop.Title, humanize(name))
	field := schema.FieldDefinition{
		FieldName:   name,
		FieldTitle:  label,
		Label:       label,
		Placeholder: strings.TrimSpace(prop.Description),
		Required:    required,
	}

	switch {
	case len(prop.Enum) > 0:
		field.FieldType = string(schema.KindSelect)
		for _, value := range prop.Enum {
			text := fmt.Sprint(value)
			field.Options = append(field.Options, schema.Option{Label: text, Value: text})
		}
	case prop.Type != nil && prop.Type.Is("boolean"):
		field.FieldType = string(schema.KindCheckbox)
	case prop.Type != nil && (prop.Type.Is("integer") || prop.Type.Is("number")):
		field.FieldType = "number"
	case prop.Type != nil && prop.Type.Is("string") && prop.Format != "":
		// Formats like email or date pass through as the raw input type.
		field.FieldType = prop.Format
	case prop.Type != nil && prop.Type.Is("string") && prop.MaxLength != nil && *prop.MaxLength > 255:
		field.FieldType = string(schema.KindTextarea)
	default:
		field.FieldType = string(schema.KindText)
	}
	return field
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// humanize turns a property key like "primary_email" into "Primary Email".
func humanize(name string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(name)
	words := strings.Fields(cleaned)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
