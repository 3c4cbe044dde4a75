package httpserver

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/render"
)

// Themes a form can pick from.
var themeNames = []string{"light", "dark", "retro", "cupcake", "forest"}

// Background gradients keyed by the name stored on the form record.
var backgrounds = map[string]string{
	"default": "",
	"sunset":  "linear-gradient(to right, #ff7e5f, #feb47b)",
	"ocean":   "linear-gradient(to right, #2193b0, #6dd5ed)",
	"meadow":  "linear-gradient(to right, #56ab2f, #a8e063)",
	"plum":    "linear-gradient(to right, #614385, #516395)",
}

// Frame styles keyed by the name stored on the form record.
var styleNames = []string{"none", "boxshadow", "border"}

// backgroundOrder fixes the option order shown in the editor.
var backgroundOrder = []string{"default", "sunset", "ocean", "meadow", "plum"}

func validTheme(name string) bool {
	for _, t := range themeNames {
		if t == name {
			return true
		}
	}
	return false
}

func validBackground(name string) bool {
	_, ok := backgrounds[name]
	return ok
}

func validStyle(name string) bool {
	for _, s := range styleNames {
		if s == name {
			return true
		}
	}
	return false
}

// renderOptions maps a stored form record to the renderer's options.
func renderOptions(rec store.FormRecord, mode render.Mode, signedIn bool, viewerEmail string) render.Options {
	cssVars := map[string]string{}
	if gradient := backgrounds[rec.Background]; gradient != "" {
		cssVars["--ff-background"] = gradient
	}

	opts := render.Options{
		Mode:           mode,
		FormID:         rec.ID,
		ActionURL:      actionURL(rec, mode),
		ThemeName:      rec.Theme,
		StyleKey:       rec.Style,
		SignInRequired: rec.SignInRequired,
		SignedIn:       signedIn,
		ViewerEmail:    viewerEmail,
	}
	if len(cssVars) > 0 {
		opts.Theme = &theme.RendererConfig{Theme: rec.Theme, CSSVars: cssVars}
	}
	return opts
}

func actionURL(rec store.FormRecord, mode render.Mode) string {
	if mode == render.ModeEdit {
		return formPath(rec.ID)
	}
	return fillPath(rec.ID)
}
