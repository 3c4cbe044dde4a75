package httpserver

import (
	"net/http"
	"net/url"

	"github.com/goliatone/go-formflow/internal/auth"
	"github.com/goliatone/go-formflow/internal/export"
)

func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	items, err := s.listItems(r.Context(), viewer.Email)
	if err != nil {
		return err
	}
	return s.renderPage(w, "responses", map[string]any{
		"viewer": viewer.Email,
		"forms":  items,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	rec, def, err := s.ownedForm(r, viewer)
	if err != nil {
		return err
	}
	responses, err := s.store.ListResponses(r.Context(), rec.ID)
	if err != nil {
		return err
	}

	workbook, err := export.Workbook(def, responses)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(def.FormTitle)+`"`)
	_, err = w.Write(workbook)
	return err
}

// sharePayload carries the fill link plus pre-built social intent URLs.
type sharePayload struct {
	Title    string
	Link     string
	Twitter  string
	Facebook string
	LinkedIn string
}

func (s *Server) buildShare(title string, formID int64) sharePayload {
	link := s.baseURL + fillPath(formID)
	encodedLink := url.QueryEscape(link)
	encodedTitle := url.QueryEscape(title)
	return sharePayload{
		Title:    title,
		Link:     link,
		Twitter:  "https://twitter.com/intent/tweet?text=" + encodedTitle + "&url=" + encodedLink,
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=" + encodedLink,
		LinkedIn: "https://www.linkedin.com/shareArticle?mini=true&url=" + encodedLink + "&title=" + encodedTitle,
	}
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request, viewer auth.Identity) error {
	_, def, err := s.ownedForm(r, viewer)
	if err != nil {
		return err
	}
	id, _ := pathID(r)
	payload := s.buildShare(def.FormTitle, id)
	return s.renderPage(w, "share", map[string]any{
		"viewer":   viewer.Email,
		"title":    payload.Title,
		"link":     payload.Link,
		"twitter":  payload.Twitter,
		"facebook": payload.Facebook,
		"linkedin": payload.LinkedIn,
	})
}
