// Package auth provides signed-cookie sessions. Identity travels inside the
// cookie itself; there is no server-side session table to consult.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// CookieName is the session cookie issued on sign-in.
const CookieName = "formflow_session"

// ErrNoSession is returned when the request carries no valid session cookie.
var ErrNoSession = errors.New("auth: no valid session")

// Identity is who the session belongs to.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionPayload struct {
	SID      string   `json:"sid"`
	Identity Identity `json:"identity"`
}

// Sessions signs and verifies session cookies with an HMAC key.
type Sessions struct {
	secret []byte
	secure bool
}

// Option configures Sessions.
type Option func(*Sessions)

// WithSecureCookies marks issued cookies Secure. Leave off for plain-HTTP
// local development.
func WithSecureCookies() Option {
	return func(s *Sessions) { s.secure = true }
}

// NewSessions builds a session manager keyed by secret.
func NewSessions(secret string, options ...Option) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("auth: session secret must not be empty")
	}
	s := &Sessions{secret: []byte(secret)}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Issue signs identity into a fresh session cookie on the response.
func (s *Sessions) Issue(w http.ResponseWriter, identity Identity) error {
	if identity.Email == "" {
		return errors.New("auth: identity email must not be empty")
	}
	payload := sessionPayload{SID: uuid.NewString(), Identity: identity}
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("auth: encode session: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(raw)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    body + "." + s.sign(body),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Identify reads and verifies the session cookie. A missing, malformed, or
// tampered cookie yields ErrNoSession.
func (s *Sessions) Identify(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Identity{}, ErrNoSession
	}
	body, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok {
		return Identity{}, ErrNoSession
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(body))) {
		return Identity{}, ErrNoSession
	}
	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return Identity{}, ErrNoSession
	}
	var payload sessionPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return Identity{}, ErrNoSession
	}
	if payload.Identity.Email == "" {
		return Identity{}, ErrNoSession
	}
	return payload.Identity, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) sign(body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
