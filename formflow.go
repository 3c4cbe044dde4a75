// Package formflow exposes the module's core flows through the root package:
// generating a form definition from a description, parsing stored
// definitions, and rendering them as HTML.
package formflow

import (
	"context"

	"github.com/goliatone/go-formflow/internal/generate"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/vanilla"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// FormDefinition aliases the parsed form shape for callers that only import
// the root package.
type FormDefinition = schema.FormDefinition

// FieldDefinition aliases one field of a definition.
type FieldDefinition = schema.FieldDefinition

// RenderOptions aliases the per-render options.
type RenderOptions = render.Options

// Completer produces raw model output for a prompt.
type Completer = generate.Completer

// NewGeminiCompleter builds the Gemini-backed completer used in production.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (Completer, error) {
	return generate.NewGemini(ctx, apiKey, model)
}

// GenerateForm turns a plain-language description into a parsed, sanitized
// form definition using the given completer.
func GenerateForm(ctx context.Context, completer Completer, description string) (FormDefinition, error) {
	return generate.New(completer).Generate(ctx, description)
}

// ParseDefinition parses a stored definition blob.
func ParseDefinition(data []byte) (FormDefinition, error) {
	return schema.ParseDefinition(data)
}

// RenderHTML renders a definition with the default renderer. It is the
// simplest entry point for callers that just want HTML output.
func RenderHTML(ctx context.Context, def FormDefinition, opts RenderOptions) ([]byte, error) {
	return vanilla.New().Render(ctx, def, opts)
}
