package httpserver

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func (s *Server) publicForm(r *http.Request) (store.FormRecord, schema.FormDefinition, error) {
	id, err := pathID(r)
	if err != nil {
		return store.FormRecord{}, schema.FormDefinition{}, err
	}
	rec, err := s.store.GetForm(r.Context(), id)
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

func (s *Server) handleFillPage(w http.ResponseWriter, r *http.Request) error {
	rec, def, err := s.publicForm(r)
	if err != nil {
		return err
	}

	viewer, sessionErr := s.sessions.Identify(r)
	signedIn := sessionErr == nil

	opts := renderOptions(rec, render.ModeFill, signedIn, viewer.Email)
	markup, err := s.renderer.Render(r.Context(), def, opts)
	if err != nil {
		return err
	}

	data := map[string]any{
		"title":     def.FormTitle,
		"form_html": string(markup),
	}
	if signedIn {
		data["viewer"] = viewer.Email
	}
	if r.URL.Query().Get("submitted") == "1" {
		data["notice"] = "Thanks, your response was recorded."
	}
	return s.renderPage(w, "form_page", data)
}

// handleSubmit collects one submission. The sign-in gate is enforced here,
// not just in the rendered markup: a gated form rejects anonymous posts even
// when the request skips the page entirely.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) error {
	rec, def, err := s.publicForm(r)
	if err != nil {
		return err
	}

	viewer, sessionErr := s.sessions.Identify(r)
	signedIn := sessionErr == nil
	if rec.SignInRequired && !signedIn {
		return StatusError{Code: http.StatusUnauthorized, Err: errors.New("httpserver: form requires sign-in before submit")}
	}

	if err := r.ParseForm(); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}

	answers := collectAnswers(def, r.PostForm)
	encoded, err := answers.Encode()
	if err != nil {
		return err
	}

	response := store.ResponseRecord{
		Answers:   string(encoded),
		CreatedAt: store.DisplayDate(time.Now()),
		FormID:    rec.ID,
	}
	if signedIn {
		response.CreatedBy = viewer.Email
	}
	if _, err := s.store.InsertResponse(r.Context(), response); err != nil {
		return err
	}

	s.logger.Info("response recorded", zap.Int64("form_id", rec.ID))
	http.Redirect(w, r, fillPath(rec.ID)+"?submitted=1", http.StatusSeeOther)
	return nil
}

// collectAnswers rebuilds the answer set from submitted form values using the
// definition as the guide. Checkbox fields with options arrive as the checked
// option labels; each option becomes a toggle entry so exports can tell
// checked from unchecked.
func collectAnswers(def schema.FormDefinition, values map[string][]string) *schema.AnswerSet {
	answers := schema.NewAnswerSet()
	for index, field := range def.Fields {
		name := field.Name(index)
		submitted, ok := values[name]
		if field.Kind() == schema.KindCheckbox && len(field.Options) > 0 {
			checked := map[string]bool{}
			for _, v := range submitted {
				checked[v] = true
			}
			for _, option := range field.Options {
				if checked[option.Label] {
					answers.Toggle(name, option.Label, true)
				}
			}
			continue
		}
		if !ok || len(submitted) == 0 {
			continue
		}
		if field.Kind() == schema.KindCheckbox {
			// Optionless checkbox: presence means checked.
			answers.Toggle(name, "", true)
			continue
		}
		answers.Set(name, submitted[0])
	}
	return answers
}
