package vanilla

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// renderField dispatches on the field's kind and returns the markup for one
// control. Select without options, textarea, and every unrecognised type all
// reach the fallback input branch, which emits a single-line input carrying
// the raw declared type.
func renderField(field schema.FieldDefinition, index int, opts render.Options) string {
	var builder strings.Builder
	builder.WriteString(`<div class="ff-field"`)
	writeAttr(&builder, "data-field-index", fmt.Sprintf("%d", index))
	builder.WriteString(">\n")

	switch kind := field.Kind(); {
	case kind == schema.KindSelect && len(field.Options) > 0:
		writeSelect(&builder, field, index)
	case kind == schema.KindRadio:
		writeRadioGroup(&builder, field, index)
	case kind == schema.KindCheckbox:
		writeCheckboxGroup(&builder, field, index)
	default:
		writeInput(&builder, field, index)
	}

	if opts.Mode == render.ModeEdit {
		writeFieldEditor(&builder, field, index, opts)
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

func writeSelect(builder *strings.Builder, field schema.FieldDefinition, index int) {
	id := controlID(field.Name(index), index)
	writeLabel(builder, id, field.Label)

	builder.WriteString(`    <select class="ff-select"`)
	writeAttr(builder, "id", id)
	writeAttr(builder, "name", field.Name(index))
	writeFlag(builder, "required", field.Required)
	builder.WriteString(">\n")

	if placeholder := strings.TrimSpace(field.Placeholder); placeholder != "" {
		builder.WriteString(`        <option value="" disabled selected>`)
		builder.WriteString(html.EscapeString(placeholder))
		builder.WriteString("</option>\n")
	}
	for _, option := range field.Options {
		builder.WriteString(`        <option`)
		writeAttr(builder, "value", option.Value)
		builder.WriteString(">")
		builder.WriteString(html.EscapeString(option.Label))
		builder.WriteString("</option>\n")
	}
	builder.WriteString("    </select>\n")
}

func writeRadioGroup(builder *strings.Builder, field schema.FieldDefinition, index int) {
	writeLabel(builder, "", field.Label)
	for i, option := range field.Options {
		id := optionID(field.Name(index), index, i)
		builder.WriteString(`    <div class="ff-choice">`)
		builder.WriteString(`<input type="radio"`)
		writeAttr(builder, "id", id)
		writeAttr(builder, "name", field.Name(index))
		writeAttr(builder, "value", option.Value)
		// The first option is pre-selected.
		writeFlag(builder, "checked", i == 0)
		writeFlag(builder, "required", field.Required && i == 0)
		builder.WriteString(">")
		builder.WriteString(`<label`)
		writeAttr(builder, "for", id)
		builder.WriteString(">")
		builder.WriteString(html.EscapeString(option.Label))
		builder.WriteString("</label></div>\n")
	}
}

func writeCheckboxGroup(builder *strings.Builder, field schema.FieldDefinition, index int) {
	writeLabel(builder, "", field.Label)
	if len(field.Options) == 0 {
		// Optionless checkbox: a single toggle keyed by the empty label.
		id := controlID(field.Name(index), index)
		builder.WriteString(`    <div class="ff-choice">`)
		builder.WriteString(`<input type="checkbox"`)
		writeAttr(builder, "id", id)
		writeAttr(builder, "name", field.Name(index))
		writeAttr(builder, "value", "")
		writeFlag(builder, "required", field.Required)
		builder.WriteString("></div>\n")
		return
	}
	for i, option := range field.Options {
		id := optionID(field.Name(index), index, i)
		builder.WriteString(`    <div class="ff-choice">`)
		builder.WriteString(`<input type="checkbox"`)
		writeAttr(builder, "id", id)
		writeAttr(builder, "name", field.Name(index))
		writeAttr(builder, "value", option.Label)
		writeFlag(builder, "required", field.Required)
		builder.WriteString(">")
		builder.WriteString(`<label`)
		writeAttr(builder, "for", id)
		builder.WriteString(">")
		builder.WriteString(html.EscapeString(option.Label))
		builder.WriteString("</label></div>\n")
	}
}

func writeInput(builder *strings.Builder, field schema.FieldDefinition, index int) {
	id := controlID(field.Name(index), index)
	writeLabel(builder, id, field.Label)

	inputType := strings.TrimSpace(field.FieldType)
	if inputType == "" {
		inputType = "text"
	}

	builder.WriteString(`    <input class="ff-input"`)
	writeAttr(builder, "type", inputType)
	writeAttr(builder, "id", id)
	writeAttr(builder, "name", field.Name(index))
	if field.Placeholder != "" {
		writeAttr(builder, "placeholder", field.Placeholder)
	}
	writeFlag(builder, "required", field.Required)
	builder.WriteString(">\n")
}

// writeFieldEditor attaches the inline edit and delete affordances shown in
// edit mode. The edit dialog is seeded from the field's current attributes
// and posts a full patch; delete posts to its own endpoint after a
// confirmation prompt.
func writeFieldEditor(builder *strings.Builder, field schema.FieldDefinition, index int, opts render.Options) {
	action := strings.TrimRight(opts.ActionURL, "/")

	builder.WriteString(`    <details class="ff-field-editor">` + "\n")
	builder.WriteString("        <summary>Edit</summary>\n")

	builder.WriteString(`        <form method="post"`)
	writeAttr(builder, "action", fmt.Sprintf("%s/fields/%d", action, index))
	builder.WriteString(">\n")

	builder.WriteString(`            <label>Label Name <input type="text" name="label"`)
	writeAttr(builder, "value", field.Label)
	builder.WriteString("></label>\n")

	builder.WriteString(`            <label>Placeholder <input type="text" name="placeholder"`)
	writeAttr(builder, "value", field.Placeholder)
	builder.WriteString("></label>\n")

	if field.Kind().ChoiceKind() {
		for i, option := range field.Options {
			builder.WriteString(`            <input type="text"`)
			writeAttr(builder, "name", fmt.Sprintf("option-%d", i))
			writeAttr(builder, "value", option.Label)
			writeAttr(builder, "placeholder", fmt.Sprintf("Option %d", i+1))
			builder.WriteString(">\n")
			builder.WriteString(`            <button type="submit" name="op"`)
			writeAttr(builder, "value", fmt.Sprintf("remove-option-%d", i))
			builder.WriteString(">Remove</button>\n")
		}
		builder.WriteString(`            <button type="submit" name="op" value="add-option">Add Option</button>` + "\n")
	}

	builder.WriteString(`            <button type="submit" name="op" value="update">Update</button>` + "\n")
	builder.WriteString("        </form>\n")

	builder.WriteString(`        <form method="post"`)
	writeAttr(builder, "action", fmt.Sprintf("%s/fields/%d/delete", action, index))
	builder.WriteString(` onsubmit="return confirm('This will permanently remove the field.')">` + "\n")
	builder.WriteString(`            <button type="submit" class="ff-delete">Delete</button>` + "\n")
	builder.WriteString("        </form>\n")
	builder.WriteString("    </details>\n")
}
