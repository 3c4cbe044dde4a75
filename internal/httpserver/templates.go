package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageEngine caches compiled pongo2 templates loaded from an fs.FS.
type pageEngine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func newPageEngine(files fs.FS) *pageEngine {
	return &pageEngine{
		set:       pongo2.NewSet("formflow", pongo2.NewFSLoader(files)),
		templates: make(map[string]*pongo2.Template),
	}
}

func defaultPageEngine() *pageEngine {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(fmt.Sprintf("httpserver: embedded templates: %v", err))
	}
	return newPageEngine(sub)
}

func (e *pageEngine) render(name string, data map[string]any) (string, error) {
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}
	tmpl, err := e.get(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", fmt.Errorf("httpserver: execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

func (e *pageEngine) get(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("httpserver: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}
