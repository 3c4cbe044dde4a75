// Package httpserver wires the form builder's HTTP surface: dashboard,
// editing, public fill pages, response export, and sign-in.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/auth"
	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/vanilla"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Generator produces a form definition from a plain-language description.
type Generator interface {
	Generate(ctx context.Context, description string) (schema.FormDefinition, error)
}

// Server holds every dependency the handlers need.
type Server struct {
	store     *store.Store
	sessions  *auth.Sessions
	provider  auth.Provider
	generator Generator
	renderers *render.Registry
	renderer  render.Renderer
	pages     *pageEngine
	logger    *zap.Logger
	baseURL   string

	rendererName string
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBaseURL sets the externally visible URL used to build share links.
func WithBaseURL(baseURL string) Option {
	return func(s *Server) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithProvider overrides the identity provider consulted on sign-in.
func WithProvider(provider auth.Provider) Option {
	return func(s *Server) {
		if provider != nil {
			s.provider = provider
		}
	}
}

// WithRenderer overrides the form renderer directly, bypassing the registry.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithRegistry sets the registry the server resolves its renderer from.
func WithRegistry(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

// WithRendererName selects which registered renderer produces form markup.
func WithRendererName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.rendererName = name
		}
	}
}

// New builds a Server. Store, sessions, and generator are required;
// the renderer defaults to whatever is registered as "vanilla".
func New(st *store.Store, sessions *auth.Sessions, generator Generator, options ...Option) (*Server, error) {
	if st == nil {
		return nil, errors.New("httpserver: missing store")
	}
	if sessions == nil {
		return nil, errors.New("httpserver: missing sessions")
	}
	if generator == nil {
		return nil, errors.New("httpserver: missing generator")
	}

	s := &Server{
		store:        st,
		sessions:     sessions,
		generator:    generator,
		pages:        defaultPageEngine(),
		logger:       zap.NewNop(),
		baseURL:      "http://localhost:8080",
		rendererName: "vanilla",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.renderer == nil {
		if s.renderers == nil {
			s.renderers = render.NewRegistry()
			s.renderers.MustRegister(vanilla.New())
		}
		renderer, err := s.renderers.Get(s.rendererName)
		if err != nil {
			return nil, fmt.Errorf("httpserver: resolve renderer: %w", err)
		}
		s.renderer = renderer
	}
	if s.provider == nil {
		s.provider = auth.FormProvider{}
	}
	return s, nil
}

// RegisterRoutes registers every handler on mux. Patterns use the
// net/http method-aware syntax.
func (s *Server) RegisterRoutes(mux Mux) error {
	if mux == nil {
		return errors.New("httpserver: missing mux")
	}

	mux.Handle("GET /dashboard", s.requireViewer(s.handleDashboard))
	mux.Handle("POST /forms", s.requireViewer(s.handleCreateForm))
	mux.Handle("GET /forms/{id}/edit", s.requireViewer(s.handleEditPage))
	mux.Handle("POST /forms/{id}/fields", s.requireViewer(s.handleAddField))
	mux.Handle("POST /forms/{id}/fields/{index}", s.requireViewer(s.handleUpdateField))
	mux.Handle("POST /forms/{id}/fields/{index}/delete", s.requireViewer(s.handleDeleteField))
	mux.Handle("POST /forms/{id}/preferences", s.requireViewer(s.handlePreferences))
	mux.Handle("POST /forms/{id}/delete", s.requireViewer(s.handleDeleteForm))
	mux.Handle("GET /forms/{id}/share", s.requireViewer(s.handleShare))
	mux.Handle("GET /forms/{id}/export", s.requireViewer(s.handleExport))
	mux.Handle("GET /responses", s.requireViewer(s.handleResponses))

	mux.Handle("GET /aiform/{id}", s.handler(s.handleFillPage))
	mux.Handle("POST /aiform/{id}/submit", s.handler(s.handleSubmit))

	mux.Handle("GET /auth/sign-in", s.handler(s.handleSignInPage))
	mux.Handle("POST /auth/sign-in", s.handler(s.handleSignIn))
	mux.Handle("POST /auth/sign-out", s.handler(s.handleSignOut))

	mux.Handle("GET /", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}))
	return nil
}

// handlerFunc is a request handler that reports failures instead of writing
// them itself.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// viewerHandlerFunc additionally receives the signed-in identity.
type viewerHandlerFunc func(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error

func (s *Server) handler(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.writeError(w, r, err)
		}
	})
}

// requireViewer redirects anonymous requests to the sign-in page for GETs
// and rejects them outright for mutations.
func (s *Server) requireViewer(fn viewerHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, err := s.sessions.Identify(r)
		if err != nil {
			if r.Method == http.MethodGet {
				http.Redirect(w, r, "/auth/sign-in?next="+r.URL.Path, http.StatusSeeOther)
				return
			}
			s.writeError(w, r, StatusError{Code: http.StatusUnauthorized, Err: err})
			return
		}
		if err := fn(w, r, viewer); err != nil {
			s.writeError(w, r, err)
		}
	})
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data map[string]any) error {
	html, err := s.pages.render(name, data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = w.Write([]byte(html))
	return err
}
