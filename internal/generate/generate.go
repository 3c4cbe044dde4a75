// Package generate turns a plain-language description into a parsed form
// definition using an LLM backend.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ErrEmptyDescription is returned when the caller submits a blank description.
var ErrEmptyDescription = errors.New("generate: description must not be empty")

// promptSuffix is appended to every description. It pins the model to the
// field vocabulary the rest of the system understands.
const promptSuffix = "Please provide a JSON format description for a form that includes essential details like the formTitle (title of the form) and formHeading (a brief description or heading for the form). For each field within the form, specify fieldName (optional identifier), fieldTitle (display name for the field), fieldType (input type such as text, select, radio, checkbox, or textarea), placeholder (optional example text), label (prompt or description for the field), and whether the field is required (true/false). If the fieldType is 'select', 'radio', or 'checkbox', ensure to include options with labels and optional values for user selections."

// Completer produces raw model output for a prompt. The Gemini client
// satisfies this; tests substitute a canned implementation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator wraps a Completer with prompt assembly and response parsing.
type Generator struct {
	completer Completer
}

// New returns a Generator backed by the given Completer.
func New(completer Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate asks the model for a form matching description and returns the
// parsed, sanitized definition. Model output wrapped in markdown code fences
// is unwrapped before parsing.
func (g *Generator) Generate(ctx context.Context, description string) (schema.FormDefinition, error) {
	if strings.TrimSpace(description) == "" {
		return schema.FormDefinition{}, ErrEmptyDescription
	}

	raw, err := g.completer.Complete(ctx, BuildPrompt(description))
	if err != nil {
		return schema.FormDefinition{}, fmt.Errorf("generate: complete: %w", err)
	}

	def, err := schema.ParseDefinition([]byte(StripFences(raw)))
	if err != nil {
		return schema.FormDefinition{}, fmt.Errorf("generate: parse model output: %w", err)
	}
	return schema.Sanitize(def), nil
}

// BuildPrompt assembles the full message sent to the model.
func BuildPrompt(description string) string {
	return "Description: " + description + promptSuffix
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, from model output. Text without fences passes through.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line, e.g. "json".
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
