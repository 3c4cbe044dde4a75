// Package vanilla renders form definitions as dependency-free HTML. Markup is
// assembled with strings.Builder and every interpolated value is escaped.
package vanilla

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

type Option func(*config)

type config struct {
	submitLabel string
	signInURL   string
}

// WithSubmitLabel overrides the submit button caption.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(label) != "" {
			cfg.submitLabel = label
		}
	}
}

// WithSignInURL points the sign-in affordance at a custom route.
func WithSignInURL(url string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(url) != "" {
			cfg.signInURL = url
		}
	}
}

type Renderer struct {
	cfg config
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) *Renderer {
	cfg := config{
		submitLabel: "Submit",
		signInURL:   "/auth/sign-in",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Renderer{cfg: cfg}
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render walks the field list in order and emits one form element. Edit mode
// adds per-field editor affordances; fill mode adds the submit control or,
// when sign-in is required and the viewer is anonymous, a sign-in affordance
// in its place.
func (r *Renderer) Render(ctx context.Context, form schema.FormDefinition, opts render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var builder strings.Builder
	builder.Grow(1024)

	// Edit mode wraps the fields in a plain container so the per-field
	// editor forms are not nested inside another form element.
	editing := opts.Mode == render.ModeEdit
	if editing {
		builder.WriteString(`<div class="ff-form"`)
	} else {
		builder.WriteString(`<form class="ff-form" method="post"`)
		if opts.ActionURL != "" {
			writeAttr(&builder, "action", submitURL(opts))
		}
	}
	if opts.ThemeName != "" {
		writeAttr(&builder, "data-theme", opts.ThemeName)
	}
	if style := frameStyle(opts); style != "" {
		writeAttr(&builder, "style", style)
	}
	builder.WriteString(">\n")

	builder.WriteString(`    <h2 class="ff-title">`)
	builder.WriteString(html.EscapeString(form.FormTitle))
	builder.WriteString("</h2>\n")
	builder.WriteString(`    <p class="ff-heading">`)
	builder.WriteString(html.EscapeString(form.FormHeading))
	builder.WriteString("</p>\n")

	for index, field := range form.Fields {
		builder.WriteString(renderField(field, index, opts))
	}

	if editing {
		builder.WriteString("</div>\n")
	} else {
		writeSubmit(&builder, opts, r.cfg)
		builder.WriteString("</form>\n")
	}
	return []byte(builder.String()), nil
}

func submitURL(opts render.Options) string {
	return strings.TrimRight(opts.ActionURL, "/") + "/submit"
}

// frameStyle combines the persisted style key with the resolved theme's CSS
// variables into one inline style attribute.
func frameStyle(opts render.Options) string {
	var parts []string
	switch opts.StyleKey {
	case "boxshadow":
		parts = append(parts, "box-shadow: 5px 5px 0px black")
	case "border":
		parts = append(parts, "border: 2px solid black")
	}
	if opts.Theme != nil && len(opts.Theme.CSSVars) > 0 {
		keys := make([]string, 0, len(opts.Theme.CSSVars))
		for key := range opts.Theme.CSSVars {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", key, opts.Theme.CSSVars[key]))
		}
	}
	return strings.Join(parts, "; ")
}

func writeSubmit(builder *strings.Builder, opts render.Options, cfg config) {
	if opts.CanSubmit() {
		builder.WriteString(`    <button type="submit" class="ff-submit">`)
		builder.WriteString(html.EscapeString(cfg.submitLabel))
		builder.WriteString("</button>\n")
		return
	}
	// Sign-in required and the viewer is anonymous: the form cannot be
	// submitted, so the submit control is replaced entirely.
	builder.WriteString(`    <a class="ff-signin"`)
	writeAttr(builder, "href", cfg.signInURL)
	builder.WriteString(">SignIn Before Submit</a>\n")
}
