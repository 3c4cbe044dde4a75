package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/auth"
)

func (s *Server) handleSignInPage(w http.ResponseWriter, r *http.Request) error {
	data := map[string]any{}
	if next := safeRedirect(r.URL.Query().Get("next")); next != "" {
		data["next"] = next
	}
	return s.renderPage(w, "sign_in", data)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: err}
	}

	identity, err := s.provider.Authenticate(r.Context(), r.PostFormValue("email"), r.PostFormValue("name"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidIdentity) {
			return StatusError{Code: http.StatusBadRequest, Err: err}
		}
		return err
	}
	if err := s.sessions.Issue(w, identity); err != nil {
		return err
	}

	s.logger.Info("signed in", zap.String("email", identity.Email))
	target := safeRedirect(r.PostFormValue("next"))
	if target == "" {
		target = "/dashboard"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
	return nil
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) error {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/auth/sign-in", http.StatusSeeOther)
	return nil
}

// safeRedirect keeps redirects on-site: only rooted paths pass through.
func safeRedirect(target string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	return ""
}
