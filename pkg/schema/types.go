package schema

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// FieldKind is the closed set of field kinds the renderers dispatch on.
// Anything a stored definition declares outside this set decodes to
// KindUnknown and falls through to the single-line input control.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindRadio    FieldKind = "radio"
	KindCheckbox FieldKind = "checkbox"
	KindUnknown  FieldKind = "unknown"
)

// KindOf maps a raw fieldType string onto the closed kind set.
func KindOf(raw string) FieldKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text":
		return KindText
	case "textarea":
		return KindTextarea
	case "select":
		return KindSelect
	case "radio":
		return KindRadio
	case "checkbox":
		return KindCheckbox
	default:
		return KindUnknown
	}
}

// ChoiceKind reports whether the kind carries an option list. Options on any
// other kind are ignored by the renderers.
func (k FieldKind) ChoiceKind() bool {
	return k == KindSelect || k == KindRadio || k == KindCheckbox
}

// Option is one selectable choice of a select, radio, or checkbox field.
// Generated definitions sometimes carry bare strings instead of objects; the
// decoder normalises those to {label: value, value: value}.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type optionObject struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts either the object form or the legacy bare string form.
func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var raw string
		if err := sonic.Unmarshal(data, &raw); err != nil {
			return err
		}
		o.Label = raw
		o.Value = raw
		return nil
	}
	var obj optionObject
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return err
	}
	o.Label = obj.Label
	o.Value = obj.Value
	return nil
}

// FieldDefinition describes one input of a form. FieldType is preserved as
// the raw string the definition declared so unrecognised types can still
// reach the fallback input control as their original type attribute.
type FieldDefinition struct {
	FieldName   string   `json:"fieldName,omitempty"`
	FieldTitle  string   `json:"fieldTitle"`
	FieldType   string   `json:"fieldType"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder"`
	Required    bool     `json:"required"`
	Options     []Option `json:"options,omitempty"`
}

// Kind resolves the field's raw type against the closed kind set.
func (f FieldDefinition) Kind() FieldKind {
	return KindOf(f.FieldType)
}

// Name returns the answer key for this field. Definitions may omit
// fieldName; those fields fall back to a positional key so rendered inputs
// and stored answers still line up.
func (f FieldDefinition) Name(index int) string {
	if f.FieldName != "" {
		return f.FieldName
	}
	return fmt.Sprintf("field-%d", index)
}

// FormDefinition is the parsed shape of a persisted form: a title, a heading,
// and an ordered field list.
type FormDefinition struct {
	FormTitle   string            `json:"formTitle"`
	FormHeading string            `json:"formHeading"`
	Fields      []FieldDefinition `json:"fields"`
}
