package render

import (
	theme "github.com/goliatone/go-theme"
)

// Mode selects between the fillable view and the editable view of a form.
type Mode int

const (
	// ModeFill renders plain controls and a submit affordance.
	ModeFill Mode = iota
	// ModeEdit additionally renders edit and delete affordances per field.
	ModeEdit
)

// Options carries per-render state: which form is being rendered, how it is
// styled, and who is looking at it. The viewer identity is passed explicitly
// rather than read from ambient session state.
type Options struct {
	Mode Mode

	// FormID identifies the persisted record a submission will reference.
	FormID int64
	// ActionURL is the submit target of the rendered form element.
	ActionURL string

	// Theme is the resolved go-theme configuration for the form chrome.
	// A nil theme renders unthemed markup.
	Theme *theme.RendererConfig
	// ThemeName is the persisted theme key (rendered as a data attribute).
	ThemeName string
	// StyleKey selects the decorative frame: "boxshadow", "border", or none.
	StyleKey string

	// SignInRequired gates submission: when set and the viewer is anonymous
	// the submit control is replaced by a sign-in affordance.
	SignInRequired bool
	// SignedIn reports whether the viewer holds an authenticated session.
	SignedIn bool
	// ViewerEmail is the viewer's owner key, empty when anonymous.
	ViewerEmail string
}

// CanSubmit reports whether this render should include a working submit
// control. The same check is re-run server-side on submission.
func (o Options) CanSubmit() bool {
	return !o.SignInRequired || o.SignedIn
}
