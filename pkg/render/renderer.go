// Package render defines the renderer contract shared by form renderers and
// the registry used to look them up by name.
package render

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Renderer turns a parsed form definition into an output document.
type Renderer interface {
	// Name identifies the renderer for registry lookups.
	Name() string
	// ContentType is the MIME type of the rendered output.
	ContentType() string
	// Render produces the output for one form under the given options.
	Render(ctx context.Context, form schema.FormDefinition, opts Options) ([]byte, error)
}
