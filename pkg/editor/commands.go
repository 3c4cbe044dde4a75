// Package editor owns the authoritative edit model for a form's field list.
// Inline edits are expressed as commands applied by a single reducer instead
// of ad-hoc partial merges, so the owning container stays the only writer.
package editor

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// FieldPatch is the committed outcome of one field-edit session. The editor
// only exposes label, placeholder, and options; the field's type is carried
// through unchanged and Options is nil (absent) when the draft list is empty,
// which clears any previously stored options on merge.
type FieldPatch struct {
	FieldType   string
	Label       string
	Placeholder string
	Options     []schema.Option
}

// Command mutates a definition's field list through Apply.
type Command interface {
	apply(fields []schema.FieldDefinition) ([]schema.FieldDefinition, error)
}

// FieldUpdated merges a patch into the field at Index, leaving every other
// index untouched.
type FieldUpdated struct {
	Index int
	Patch FieldPatch
}

func (c FieldUpdated) apply(fields []schema.FieldDefinition) ([]schema.FieldDefinition, error) {
	if c.Index < 0 || c.Index >= len(fields) {
		return nil, fmt.Errorf("editor: update index %d out of range (%d fields)", c.Index, len(fields))
	}
	out := make([]schema.FieldDefinition, len(fields))
	copy(out, fields)
	field := out[c.Index]
	field.FieldType = c.Patch.FieldType
	field.Label = c.Patch.Label
	field.Placeholder = c.Patch.Placeholder
	field.Options = c.Patch.Options
	out[c.Index] = field
	return out, nil
}

// FieldDeleted removes the field at Index.
type FieldDeleted struct {
	Index int
}

func (c FieldDeleted) apply(fields []schema.FieldDefinition) ([]schema.FieldDefinition, error) {
	if c.Index < 0 || c.Index >= len(fields) {
		return nil, fmt.Errorf("editor: delete index %d out of range (%d fields)", c.Index, len(fields))
	}
	out := make([]schema.FieldDefinition, 0, len(fields)-1)
	out = append(out, fields[:c.Index]...)
	out = append(out, fields[c.Index+1:]...)
	return out, nil
}

// FieldAdded appends a new field to the end of the list.
type FieldAdded struct {
	Field schema.FieldDefinition
}

func (c FieldAdded) apply(fields []schema.FieldDefinition) ([]schema.FieldDefinition, error) {
	out := make([]schema.FieldDefinition, len(fields), len(fields)+1)
	copy(out, fields)
	return append(out, c.Field), nil
}

// Apply runs one command against the definition and returns the updated
// definition. The input is never mutated; the caller re-serialises the
// result and writes it back as a whole.
func Apply(def schema.FormDefinition, cmd Command) (schema.FormDefinition, error) {
	fields, err := cmd.apply(def.Fields)
	if err != nil {
		return schema.FormDefinition{}, err
	}
	def.Fields = fields
	return def, nil
}
