package schema

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func sanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(textPolicy.Sanitize(trimmed))
}

// Sanitize strips markup from every model-produced text attribute of the
// definition. Generated output is parsed without any schema enforcement, so
// titles, labels, and option text are cleaned before they can reach markup.
func Sanitize(def FormDefinition) FormDefinition {
	def.FormTitle = sanitizeText(def.FormTitle)
	def.FormHeading = sanitizeText(def.FormHeading)
	for i := range def.Fields {
		field := &def.Fields[i]
		field.FieldTitle = sanitizeText(field.FieldTitle)
		field.Label = sanitizeText(field.Label)
		field.Placeholder = sanitizeText(field.Placeholder)
		for j := range field.Options {
			field.Options[j].Label = sanitizeText(field.Options[j].Label)
			field.Options[j].Value = sanitizeText(field.Options[j].Value)
		}
	}
	return def
}
