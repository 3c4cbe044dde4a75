package openapi

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
)

const sampleDocument = `
openapi: 3.0.3
info:
  title: Support API
  description: Customer support endpoints
  version: 1.0.0
paths: {}
components:
  schemas:
    Ticket:
      type: object
      title: Support Ticket
      description: Open a support ticket
      required: [email, subject]
      properties:
        email:
          type: string
          format: email
          description: Where we reply
        subject:
          type: string
        priority:
          type: string
          enum: [low, medium, high]
        urgent:
          type: boolean
`

func TestImportBuildsFormDefinition(t *testing.T) {
	importer := New(Options{})
	def, err := importer.Import(context.Background(), []byte(sampleDocument), "Ticket")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if def.FormTitle != "Support Ticket" {
		t.Fatalf("unexpected title %q", def.FormTitle)
	}
	if def.FormHeading != "Open a support ticket" {
		t.Fatalf("unexpected heading %q", def.FormHeading)
	}

	byName := make(map[string]schema.FieldDefinition, len(def.Fields))
	for _, field := range def.Fields {
		byName[field.FieldName] = field
	}

	email := byName["email"]
	if email.FieldType != "email" || !email.Required {
		t.Fatalf("unexpected email field: %+v", email)
	}
	if email.Placeholder != "Where we reply" {
		t.Fatalf("expected description as placeholder, got %q", email.Placeholder)
	}

	subject := byName["subject"]
	if subject.FieldType != "text" || !subject.Required || subject.Label != "Subject" {
		t.Fatalf("unexpected subject field: %+v", subject)
	}

	priority := byName["priority"]
	if priority.Kind() != schema.KindSelect {
		t.Fatalf("expected enum mapped to select, got %+v", priority)
	}
	wantOptions := []schema.Option{
		{Label: "low", Value: "low"},
		{Label: "medium", Value: "medium"},
		{Label: "high", Value: "high"},
	}
	if diff := cmp.Diff(wantOptions, priority.Options); diff != "" {
		t.Fatalf("enum options mismatch (-want +got):\n%s", diff)
	}

	if byName["urgent"].Kind() != schema.KindCheckbox {
		t.Fatalf("expected boolean mapped to checkbox, got %+v", byName["urgent"])
	}
}

func TestImportUnknownSchema(t *testing.T) {
	importer := New(Options{})
	if _, err := importer.Import(context.Background(), []byte(sampleDocument), "Missing"); err == nil {
		t.Fatal("expected error for unknown schema name")
	}
}

func TestImportEmptyDocument(t *testing.T) {
	importer := New(Options{})
	if _, err := importer.Import(context.Background(), nil, "Ticket"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
