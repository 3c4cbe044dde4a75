// Package export flattens collected responses into spreadsheet workbooks.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/schema"
)

const sheetName = "Responses"

// Workbook renders the form's responses as an xlsx workbook. Columns follow
// the definition's field order, then any extra answer keys alphabetically,
// then the submission metadata. Checkbox answers collapse to a comma-joined
// list of the checked labels.
func Workbook(def schema.FormDefinition, responses []store.ResponseRecord) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("export: name sheet: %w", err)
	}

	columns := columnOrder(def, responses)
	header := make([]any, 0, len(columns)+2)
	for _, name := range columns {
		header = append(header, headerFor(def, name))
	}
	header = append(header, "Submitted By", "Submitted At")
	if err := writeRow(file, 1, header); err != nil {
		return nil, err
	}

	for i, resp := range responses {
		answers, err := schema.DecodeAnswers([]byte(resp.Answers))
		if err != nil {
			return nil, fmt.Errorf("export: decode response %d: %w", resp.ID, err)
		}
		row := make([]any, 0, len(columns)+2)
		for _, name := range columns {
			row = append(row, flatten(answers[name]))
		}
		row = append(row, resp.CreatedBy, resp.CreatedAt)
		if err := writeRow(file, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename derives the download name from the form title, falling back to
// "form" when the title sanitizes away entirely.
func Filename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		name = "form"
	}
	return name + ".xlsx"
}

func columnOrder(def schema.FormDefinition, responses []store.ResponseRecord) []string {
	var order []string
	seen := map[string]bool{}
	for i, field := range def.Fields {
		name := field.Name(i)
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}

	extras := map[string]bool{}
	for _, resp := range responses {
		answers, err := schema.DecodeAnswers([]byte(resp.Answers))
		if err != nil {
			continue
		}
		for key := range answers {
			if !seen[key] {
				extras[key] = true
			}
		}
	}
	extraKeys := make([]string, 0, len(extras))
	for key := range extras {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	return append(order, extraKeys...)
}

func headerFor(def schema.FormDefinition, name string) string {
	for i, field := range def.Fields {
		if field.Name(i) == name {
			if field.FieldTitle != "" {
				return field.FieldTitle
			}
			if field.Label != "" {
				return field.Label
			}
			break
		}
	}
	return name
}

// flatten turns a decoded answer value into a cell string. Toggle lists keep
// only the checked entries.
func flatten(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		var checked []string
		for _, item := range v {
			entry, ok := item.(map[string]any)
			if !ok {
				checked = append(checked, fmt.Sprint(item))
				continue
			}
			on, _ := entry["value"].(bool)
			label, _ := entry["label"].(string)
			if on {
				checked = append(checked, label)
			}
		}
		return strings.Join(checked, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func writeRow(file *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export: row %d coordinates: %w", row, err)
	}
	if err := file.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("export: write row %d: %w", row, err)
	}
	return nil
}
