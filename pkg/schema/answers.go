package schema

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Toggle is one checked entry of a checkbox group answer. The JSON shape
// mirrors the persisted response format: {"label": ..., "value": true}.
type Toggle struct {
	Label   string `json:"label"`
	Checked bool   `json:"value"`
}

// AnswerSet holds the transient per-session answers of one fill session,
// keyed by field name. Scalar kinds (text, select, radio, fallback inputs)
// store a string; checkbox groups store an ordered toggle list. Fields the
// respondent never touched are simply absent.
type AnswerSet struct {
	values map[string]any
}

// NewAnswerSet returns an empty answer set.
func NewAnswerSet() *AnswerSet {
	return &AnswerSet{values: make(map[string]any)}
}

// Set records a scalar answer. Setting the same name twice keeps the last
// value, which is also how duplicate input names resolve on submit.
func (a *AnswerSet) Set(name, value string) {
	a.values[name] = value
}

// Toggle flips one checkbox option. Checking appends a toggle entry;
// unchecking removes every entry whose label matches. An optionless checkbox
// field toggles under the empty label.
func (a *AnswerSet) Toggle(name, optionLabel string, checked bool) {
	var list []Toggle
	if existing, ok := a.values[name].([]Toggle); ok {
		list = existing
	}
	if checked {
		a.values[name] = append(list, Toggle{Label: optionLabel, Checked: true})
		return
	}
	kept := list[:0]
	for _, entry := range list {
		if entry.Label != optionLabel {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(a.values, name)
		return
	}
	a.values[name] = kept
}

// Get returns the current value for a field name, if any.
func (a *AnswerSet) Get(name string) (any, bool) {
	value, ok := a.values[name]
	return value, ok
}

// Len reports how many fields currently hold an answer.
func (a *AnswerSet) Len() int {
	return len(a.values)
}

// Reset discards all accumulated answers, as happens after a successful
// submit or navigation away.
func (a *AnswerSet) Reset() {
	a.values = make(map[string]any)
}

// Encode serializes the answer map into the single text blob persisted as a
// response record.
func (a *AnswerSet) Encode() ([]byte, error) {
	payload, err := sonic.Marshal(a.values)
	if err != nil {
		return nil, fmt.Errorf("schema: encode answers: %w", err)
	}
	return payload, nil
}

// DecodeAnswers parses a persisted response blob into a generic answer map.
// Checkbox answers come back as []any of {label, value} objects; export
// flattening handles both shapes.
func DecodeAnswers(data []byte) (map[string]any, error) {
	var answers map[string]any
	if err := sonic.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("schema: decode answers: %w", err)
	}
	return answers, nil
}
