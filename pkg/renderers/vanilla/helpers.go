package vanilla

import (
	"fmt"
	"html"
	"strings"
)

// controlID builds a stable DOM id for a field control. Field names may be
// empty or duplicated, so the index keeps ids unique within one form.
func controlID(name string, index int) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Sprintf("ff-field-%d", index)
	}
	return fmt.Sprintf("ff-%s-%d", sanitizeToken(trimmed), index)
}

func optionID(name string, index, optionIndex int) string {
	return fmt.Sprintf("%s-opt-%d", controlID(name, index), optionIndex)
}

func sanitizeToken(raw string) string {
	var builder strings.Builder
	builder.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteByte('-')
		}
	}
	return builder.String()
}

func writeAttr(builder *strings.Builder, name, value string) {
	builder.WriteByte(' ')
	builder.WriteString(name)
	builder.WriteString(`="`)
	builder.WriteString(html.EscapeString(value))
	builder.WriteByte('"')
}

func writeFlag(builder *strings.Builder, name string, set bool) {
	if !set {
		return
	}
	builder.WriteByte(' ')
	builder.WriteString(name)
}

func writeLabel(builder *strings.Builder, forID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	builder.WriteString(`    <label`)
	if forID != "" {
		writeAttr(builder, "for", forID)
	}
	builder.WriteString(` class="ff-label">`)
	builder.WriteString(html.EscapeString(text))
	builder.WriteString("</label>\n")
}
