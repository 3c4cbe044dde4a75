package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/auth"
	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/editor"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func formPath(id int64) string {
	return fmt.Sprintf("/forms/%d", id)
}

func fillPath(id int64) string {
	return fmt.Sprintf("/aiform/%d", id)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("httpserver: invalid form id %q", r.PathValue("id"))}
	}
	return id, nil
}

func pathIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		return 0, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("httpserver: invalid field index %q", r.PathValue("index"))}
	}
	return index, nil
}

// formListItem is the view model shared by the dashboard and responses pages.
type formListItem struct {
	ID            int64
	Title         string
	CreatedAt     string
	ResponseCount int
	FillURL       string
	// Broken marks a form whose stored definition no longer parses. The
	// card still lists it so the owner can delete it.
	Broken bool
}

func (s *Server) listItems(ctx context.Context, owner string) ([]formListItem, error) {
	records, err := s.store.ListFormsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	items := make([]formListItem, 0, len(records))
	for _, rec := range records {
		def, err := schema.ParseDefinition([]byte(rec.Definition))
		if err != nil {
			s.logger.Warn("form definition no longer parses",
				zap.Int64("form_id", rec.ID), zap.Error(err))
			items = append(items, formListItem{
				ID:        rec.ID,
				Title:     fmt.Sprintf("Form %d (definition unreadable)", rec.ID),
				CreatedAt: rec.CreatedAt,
				Broken:    true,
			})
			continue
		}
		count, err := s.store.CountResponses(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, formListItem{
			ID:            rec.ID,
			Title:         def.FormTitle,
			CreatedAt:     rec.CreatedAt,
			ResponseCount: count,
			FillURL:       fillPath(rec.ID),
		})
	}
	return items, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	items, err := s.listItems(r.Context(), viewer.Email)
	if err != nil {
		return err
	}
	return s.renderPage(w, "dashboard", map[string]any{
		"viewer": viewer.Email,
		"forms":  items,
	})
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	if err := r.ParseForm(); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}
	description := strings.TrimSpace(r.PostFormValue("description"))
	if description == "" {
		return StatusError{Code: http.StatusBadRequest, Err: errors.New("httpserver: description must not be empty")}
	}

	def, err := s.generator.Generate(r.Context(), description)
	if err != nil {
		return StatusError{Code: http.StatusBadGateway, Err: err}
	}
	encoded, err := def.Encode()
	if err != nil {
		return err
	}

	id, err := s.store.InsertForm(r.Context(), store.FormRecord{
		Definition: string(encoded),
		CreatedBy:  viewer.Email,
		CreatedAt:  store.DisplayDate(time.Now()),
	})
	if err != nil {
		return err
	}

	s.logger.Info("form created",
		zap.Int64("form_id", id), zap.String("owner", viewer.Email))
	http.Redirect(w, r, formPath(id)+"/edit", http.StatusSeeOther)
	return nil
}

func (s *Server) ownedForm(r *http.Request, viewer auth.Identity) (store.FormRecord, schema.FormDefinition, error) {
	id, err := pathID(r)
	if err != nil {
		return store.FormRecord{}, schema.FormDefinition{}, err
	}
	rec, err := s.store.GetFormForOwner(r.Context(), id, viewer.Email)
	if errors.Is(err, store.ErrNotFound) {
		return store.FormRecord{}, schema.FormDefinition{}, StatusError{Code: http.StatusNotFound, Err: err}
	}
	if err != nil {
		return store.FormRecord{}, schema.FormDefinition{}, err
	}
	def, err := schema.ParseDefinition([]byte(rec.Definition))
	if err != nil {
		return store.FormRecord{}, schema.FormDefinition{}, err
	}
	return rec, def, nil
}

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	rec, def, err := s.ownedForm(r, viewer)
	if err != nil {
		return err
	}

	opts := renderOptions(rec, render.ModeEdit, true, viewer.Email)
	markup, err := s.renderer.Render(r.Context(), def, opts)
	if err != nil {
		return err
	}

	return s.renderPage(w, "edit_page", map[string]any{
		"viewer":           viewer.Email,
		"title":            def.FormTitle,
		"form_id":          rec.ID,
		"form_html":        string(markup),
		"themes":           themeNames,
		"backgrounds":      backgroundOrder,
		"styles":           styleNames,
		"theme":            rec.Theme,
		"background":       rec.Background,
		"style":            rec.Style,
		"sign_in_required": rec.SignInRequired,
	})
}

// applyDefinitionCommand loads the owner's form, applies cmd, and stores the
// result.
func (s *Server) applyDefinitionCommand(r *http.Request, viewer auth.Identity, cmd editor.Command) error {
	rec, def, err := s.ownedForm(r, viewer)
	if err != nil {
		return err
	}
	next, err := editor.Apply(def, cmd)
	if err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}
	encoded, err := next.Encode()
	if err != nil {
		return err
	}
	if err := s.store.UpdateFormDefinition(r.Context(), rec.ID, viewer.Email, string(encoded)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatusError{Code: http.StatusNotFound, Err: err}
		}
		return err
	}
	return nil
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	index, err := pathIndex(r)
	if err != nil {
		return err
	}
	if err := r.ParseForm(); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}

	rec, def, err := s.ownedForm(r, viewer)
	if err != nil {
		return err
	}
	if index >= len(def.Fields) {
		return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("httpserver: field index %d out of range", index)}
	}

	draft := editor.NewDraft(def.Fields[index])
	draft.SetLabel(r.PostFormValue("label"))
	draft.SetPlaceholder(r.PostFormValue("placeholder"))
	for i := range draft.Options() {
		if value, ok := r.PostForm[fmt.Sprintf("option-%d", i)]; ok && len(value) > 0 {
			draft.EditOption(i, value[0])
		}
	}
	op := r.PostFormValue("op")
	switch {
	case op == "add-option":
		draft.AddOption()
	case strings.HasPrefix(op, "remove-option-"):
		at, err := strconv.Atoi(strings.TrimPrefix(op, "remove-option-"))
		if err != nil {
			return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("httpserver: invalid editor op %q", op)}
		}
		if err := draft.RemoveOption(at); err != nil {
			return StatusError{Code: http.StatusBadRequest, Err: err}
		}
	}

	next, err := editor.Apply(def, editor.FieldUpdated{Index: index, Patch: draft.Commit()})
	if err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}
	encoded, err := next.Encode()
	if err != nil {
		return err
	}
	if err := s.store.UpdateFormDefinition(r.Context(), rec.ID, viewer.Email, string(encoded)); err != nil {
		return err
	}

	http.Redirect(w, r, formPath(rec.ID)+"/edit", http.StatusSeeOther)
	return nil
}

func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	index, err := pathIndex(r)
	if err != nil {
		return err
	}
	if err := s.applyDefinitionCommand(r, viewer, editor.FieldDeleted{Index: index}); err != nil {
		return err
	}
	id, _ := pathID(r)
	http.Redirect(w, r, formPath(id)+"/edit", http.StatusSeeOther)
	return nil
}

func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	field := schema.FieldDefinition{
		FieldTitle: "New Field",
		FieldType:  "text",
		Label:      "New Field",
	}
	if err := s.applyDefinitionCommand(r, viewer, editor.FieldAdded{Field: field}); err != nil {
		return err
	}
	id, _ := pathID(r)
	http.Redirect(w, r, formPath(id)+"/edit", http.StatusSeeOther)
	return nil
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := r.ParseForm(); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}

	prefs := store.Preferences{
		Theme:          r.PostFormValue("theme"),
		Background:     r.PostFormValue("background"),
		Style:          r.PostFormValue("style"),
		SignInRequired: r.PostFormValue("signInRequired") == "true",
	}
	if !validTheme(prefs.Theme) || !validBackground(prefs.Background) || !validStyle(prefs.Style) {
		return StatusError{Code: http.StatusBadRequest, Err: errors.New("httpserver: unknown theme, background, or style")}
	}

	if err := s.store.UpdateFormPreferences(r.Context(), id, viewer.Email, prefs); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatusError{Code: http.StatusNotFound, Err: err}
		}
		return err
	}
	http.Redirect(w, r, formPath(id)+"/edit", http.StatusSeeOther)
	return nil
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := s.store.DeleteForm(r.Context(), id, viewer.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatusError{Code: http.StatusNotFound, Err: err}
		}
		return err
	}
	s.logger.Info("form deleted",
		zap.Int64("form_id", id), zap.String("owner", viewer.Email))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	return nil
}
