package editor

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Draft holds the local state of one field-edit dialog, seeded from the
// field it was opened for. Edits stay in the draft until Commit; dropping
// the draft without committing discards everything.
type Draft struct {
	fieldType   string
	label       string
	placeholder string
	options     []schema.Option
}

// NewDraft seeds a draft from the field's current attributes.
func NewDraft(field schema.FieldDefinition) *Draft {
	options := make([]schema.Option, len(field.Options))
	copy(options, field.Options)
	return &Draft{
		fieldType:   field.FieldType,
		label:       field.Label,
		placeholder: field.Placeholder,
		options:     options,
	}
}

// SetLabel updates the draft label.
func (d *Draft) SetLabel(label string) {
	d.label = label
}

// SetPlaceholder updates the draft placeholder.
func (d *Draft) SetPlaceholder(placeholder string) {
	d.placeholder = placeholder
}

// Label returns the current draft label.
func (d *Draft) Label() string { return d.label }

// Placeholder returns the current draft placeholder.
func (d *Draft) Placeholder() string { return d.placeholder }

// Options returns a copy of the current draft option list.
func (d *Draft) Options() []schema.Option {
	out := make([]schema.Option, len(d.options))
	copy(out, d.options)
	return out
}

// AddOption appends a new option with an auto-generated placeholder label
// and an index-based value.
func (d *Draft) AddOption() {
	index := len(d.options)
	d.options = append(d.options, schema.Option{
		Label: fmt.Sprintf("Option %d", index+1),
		Value: fmt.Sprintf("option-%d", index),
	})
}

// EditOption rewrites the option label at index. The value is re-derived
// from the label, falling back to an index-based placeholder when the label
// is empty. Two options given the same non-empty label therefore collide on
// value; on submit the last entry under a name wins.
func (d *Draft) EditOption(index int, label string) error {
	if index < 0 || index >= len(d.options) {
		return fmt.Errorf("editor: option index %d out of range (%d options)", index, len(d.options))
	}
	d.options[index].Label = label
	if label == "" {
		d.options[index].Value = fmt.Sprintf("option-%d", index)
	} else {
		d.options[index].Value = label
	}
	return nil
}

// RemoveOption deletes the option at index.
func (d *Draft) RemoveOption(index int) error {
	if index < 0 || index >= len(d.options) {
		return fmt.Errorf("editor: option index %d out of range (%d options)", index, len(d.options))
	}
	d.options = append(d.options[:index], d.options[index+1:]...)
	return nil
}

// Commit packages the draft as a field patch. Options is nil, not an empty
// list, when the draft holds no options.
func (d *Draft) Commit() FieldPatch {
	patch := FieldPatch{
		FieldType:   d.fieldType,
		Label:       d.label,
		Placeholder: d.placeholder,
	}
	if len(d.options) > 0 {
		patch.Options = make([]schema.Option, len(d.options))
		copy(patch.Options, d.options)
	}
	return patch
}
