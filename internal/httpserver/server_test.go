package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-formflow/internal/auth"
	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

type stubGenerator struct {
	def schema.FormDefinition
	err error
}

func (s stubGenerator) Generate(context.Context, string) (schema.FormDefinition, error) {
	return s.def, s.err
}

func sampleDefinition() schema.FormDefinition {
	return schema.FormDefinition{
		FormTitle:   "Event RSVP",
		FormHeading: "Let us know if you can make it",
		Fields: []schema.FieldDefinition{
			{FieldName: "name", FieldTitle: "Name", FieldType: "text", Label: "Your name", Required: true},
			{FieldName: "sessions", FieldTitle: "Sessions", FieldType: "checkbox", Label: "Sessions", Options: []schema.Option{
				{Label: "Morning", Value: "morning"},
				{Label: "Afternoon", Value: "afternoon"},
			}},
		},
	}
}

type testEnv struct {
	server   *Server
	mux      *http.ServeMux
	store    *store.Store
	sessions *auth.Sessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sessions, err := auth.NewSessions("test-secret")
	if err != nil {
		t.Fatalf("new sessions: %v", err)
	}

	srv, err := New(st, sessions, stubGenerator{def: sampleDefinition()},
		WithBaseURL("https://forms.example.com"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	mux := http.NewServeMux()
	if err := srv.RegisterRoutes(mux); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return &testEnv{server: srv, mux: mux, store: st, sessions: sessions}
}

func (e *testEnv) signIn(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := e.sessions.Issue(rec, auth.Identity{Email: email}); err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return rec.Result().Cookies()[0]
}

func (e *testEnv) insertForm(t *testing.T, owner string, gated bool) int64 {
	t.Helper()
	encoded, err := sampleDefinition().Encode()
	if err != nil {
		t.Fatalf("encode definition: %v", err)
	}
	id, err := e.store.InsertForm(context.Background(), store.FormRecord{
		Definition:     string(encoded),
		CreatedBy:      owner,
		CreatedAt:      store.DisplayDate(time.Now()),
		SignInRequired: gated,
	})
	if err != nil {
		t.Fatalf("insert form: %v", err)
	}
	return id
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/auth/sign-in") {
		t.Errorf("redirect = %q, want sign-in", loc)
	}
}

func TestCreateFormRedirectsToEditor(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")

	req := postForm("/forms", url.Values{"description": {"an RSVP form"}})
	req.AddCookie(cookie)
	rec := env.do(req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/forms/") || !strings.HasSuffix(loc, "/edit") {
		t.Fatalf("redirect = %q, want /forms/{id}/edit", loc)
	}

	forms, err := env.store.ListFormsByOwner(context.Background(), "alice@example.com")
	if err != nil || len(forms) != 1 {
		t.Fatalf("stored forms = %d (%v), want 1", len(forms), err)
	}
}

func TestCreateFormRequiresDescription(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")

	req := postForm("/forms", url.Values{"description": {"  "}})
	req.AddCookie(cookie)
	if rec := env.do(req); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEditPageShowsEditorAffordances(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")
	id := env.insertForm(t, "alice@example.com", false)

	req := httptest.NewRequest(http.MethodGet, "/forms/"+itoa(id)+"/edit", nil)
	req.AddCookie(cookie)
	rec := env.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Event RSVP") {
		t.Error("page missing form title")
	}
	if !strings.Contains(body, "ff-field-editor") {
		t.Error("page missing field editor affordances")
	}
	if !strings.Contains(body, "/preferences") {
		t.Error("page missing preferences form")
	}
}

func TestEditPageScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	id := env.insertForm(t, "alice@example.com", false)
	cookie := env.signIn(t, "mallory@example.com")

	req := httptest.NewRequest(http.MethodGet, "/forms/"+itoa(id)+"/edit", nil)
	req.AddCookie(cookie)
	if rec := env.do(req); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateFieldPersists(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")
	id := env.insertForm(t, "alice@example.com", false)

	req := postForm("/forms/"+itoa(id)+"/fields/0", url.Values{
		"label":       {"Full name"},
		"placeholder": {"Jane Doe"},
		"op":          {"update"},
	})
	req.AddCookie(cookie)
	if rec := env.do(req); rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, err := env.store.GetForm(context.Background(), id)
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	def, err := schema.ParseDefinition([]byte(stored.Definition))
	if err != nil {
		t.Fatalf("parse stored definition: %v", err)
	}
	if def.Fields[0].Label != "Full name" || def.Fields[0].Placeholder != "Jane Doe" {
		t.Errorf("field 0 = %+v", def.Fields[0])
	}
	if def.Fields[1].Label != "Sessions" {
		t.Errorf("field 1 changed: %+v", def.Fields[1])
	}
}

func TestRemoveOptionShrinksChoiceField(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")
	id := env.insertForm(t, "alice@example.com", false)

	req := postForm("/forms/"+itoa(id)+"/fields/1", url.Values{
		"label":    {"Sessions"},
		"option-0": {"Morning"},
		"option-1": {"Afternoon"},
		"op":       {"remove-option-0"},
	})
	req.AddCookie(cookie)
	if rec := env.do(req); rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, err := env.store.GetForm(context.Background(), id)
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	def, err := schema.ParseDefinition([]byte(stored.Definition))
	if err != nil {
		t.Fatalf("parse stored definition: %v", err)
	}
	options := def.Fields[1].Options
	if len(options) != 1 || options[0].Label != "Afternoon" {
		t.Fatalf("options after removal: %+v", options)
	}

	// Removing the last option drops the options key from the stored blob.
	req = postForm("/forms/"+itoa(id)+"/fields/1", url.Values{
		"label": {"Sessions"},
		"op":    {"remove-option-0"},
	})
	req.AddCookie(cookie)
	if rec := env.do(req); rec.Code != http.StatusSeeOther {
		t.Fatalf("second removal status = %d, body %s", rec.Code, rec.Body.String())
	}
	stored, err = env.store.GetForm(context.Background(), id)
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if strings.Contains(stored.Definition, `"options"`) {
		t.Fatalf("expected options omitted from stored definition, got %s", stored.Definition)
	}
}

func TestRemoveOptionRejectsBadIndex(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")
	id := env.insertForm(t, "alice@example.com", false)

	req := postForm("/forms/"+itoa(id)+"/fields/1", url.Values{
		"label": {"Sessions"},
		"op":    {"remove-option-9"},
	})
	req.AddCookie(cookie)
	if rec := env.do(req); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteFieldShrinksDefinition(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")
	id := env.insertForm(t, "alice@example.com", false)

	req := postForm("/forms/"+itoa(id)+"/fields/0/delete", nil)
	req.AddCookie(cookie)
	if rec := env.do(req); rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, _ := env.store.GetForm(context.Background(), id)
	def, err := schema.ParseDefinition([]byte(stored.Definition))
	if err != nil {
		t.Fatalf("parse stored definition: %v", err)
	}
	if len(def.Fields) != 1 || def.Fields[0].FieldName != "sessions" {
		t.Errorf("fields after delete = %+v", def.Fields)
	}
}

func TestFillPagePublic(t *testing.T) {
	env := newTestEnv(t)
	id := env.insertForm(t, "alice@example.com", false)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/aiform/"+itoa(id), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Event RSVP") || !strings.Contains(body, `type="submit"`) {
		t.Errorf("fill page incomplete:\n%s", body)
	}
	if strings.Contains(body, "ff-field-editor") {
		t.Error("edit affordances leaked into the public page")
	}
}

func TestSubmitRecordsResponse(t *testing.T) {
	env := newTestEnv(t)
	id := env.insertForm(t, "alice@example.com", false)

	req := postForm("/aiform/"+itoa(id)+"/submit", url.Values{
		"name":     {"Ada"},
		"sessions": {"Morning", "Afternoon"},
	})
	if rec := env.do(req); rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	responses, err := env.store.ListResponses(context.Background(), id)
	if err != nil || len(responses) != 1 {
		t.Fatalf("responses = %d (%v), want 1", len(responses), err)
	}
	if responses[0].CreatedBy != "Anonymous" {
		t.Errorf("created by = %q, want Anonymous", responses[0].CreatedBy)
	}
	answers, err := schema.DecodeAnswers([]byte(responses[0].Answers))
	if err != nil {
		t.Fatalf("decode answers: %v", err)
	}
	if answers["name"] != "Ada" {
		t.Errorf("name answer = %v", answers["name"])
	}
	toggles, ok := answers["sessions"].([]any)
	if !ok || len(toggles) != 2 {
		t.Errorf("sessions answer = %v", answers["sessions"])
	}
}

func TestSubmitGateEnforcedServerSide(t *testing.T) {
	env := newTestEnv(t)
	id := env.insertForm(t, "alice@example.com", true)

	req := postForm("/aiform/"+itoa(id)+"/submit", url.Values{"name": {"Ada"}})
	if rec := env.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	// The same submission passes once signed in.
	cookie := env.signIn(t, "bob@example.com")
	req = postForm("/aiform/"+itoa(id)+"/submit", url.Values{"name": {"Ada"}})
	req.AddCookie(cookie)
	if rec := env.do(req); rec.Code != http.StatusSeeOther {
		t.Fatalf("signed-in status = %d", rec.Code)
	}

	responses, _ := env.store.ListResponses(context.Background(), id)
	if len(responses) != 1 || responses[0].CreatedBy != "bob@example.com" {
		t.Fatalf("responses = %+v", responses)
	}
}

func TestGatedFillPageShowsSignInAffordance(t *testing.T) {
	env := newTestEnv(t)
	id := env.insertForm(t, "alice@example.com", true)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/aiform/"+itoa(id), nil))
	body := rec.Body.String()
	if !strings.Contains(body, "SignIn Before Submit") {
		t.Error("gated page missing sign-in affordance")
	}
	if strings.Contains(body, `<button type="submit" class="ff-submit"`) {
		t.Error("gated page still shows submit control")
	}
}

func TestDeleteFormCascades(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")
	id := env.insertForm(t, "alice@example.com", false)

	submit := postForm("/aiform/"+itoa(id)+"/submit", url.Values{"name": {"Ada"}})
	if rec := env.do(submit); rec.Code != http.StatusSeeOther {
		t.Fatalf("submit status = %d", rec.Code)
	}

	del := postForm("/forms/"+itoa(id)+"/delete", nil)
	del.AddCookie(cookie)
	if rec := env.do(del); rec.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rec.Code)
	}

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/aiform/"+itoa(id), nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("fill page after delete = %d, want 404", rec.Code)
	}
	count, _ := env.store.CountResponses(context.Background(), id)
	if count != 0 {
		t.Errorf("responses after delete = %d", count)
	}
}

func TestPreferencesValidation(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")
	id := env.insertForm(t, "alice@example.com", false)

	req := postForm("/forms/"+itoa(id)+"/preferences", url.Values{
		"theme":      {"dark"},
		"background": {"sunset"},
		"style":      {"boxshadow"},
	})
	req.AddCookie(cookie)
	if rec := env.do(req); rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, _ := env.store.GetForm(context.Background(), id)
	if stored.Theme != "dark" || stored.Background != "sunset" || stored.Style != "boxshadow" {
		t.Errorf("stored prefs = %q/%q/%q", stored.Theme, stored.Background, stored.Style)
	}

	bad := postForm("/forms/"+itoa(id)+"/preferences", url.Values{
		"theme":      {"neon"},
		"background": {"sunset"},
		"style":      {"boxshadow"},
	})
	bad.AddCookie(cookie)
	if rec := env.do(bad); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid theme status = %d, want 400", rec.Code)
	}
}

func TestSharePayload(t *testing.T) {
	env := newTestEnv(t)
	payload := env.server.buildShare("Event RSVP", 42)

	if payload.Link != "https://forms.example.com/aiform/42" {
		t.Errorf("link = %q", payload.Link)
	}
	if !strings.Contains(payload.Twitter, "twitter.com/intent/tweet") ||
		!strings.Contains(payload.Twitter, url.QueryEscape(payload.Link)) {
		t.Errorf("twitter = %q", payload.Twitter)
	}
	if !strings.Contains(payload.Facebook, "facebook.com/sharer") {
		t.Errorf("facebook = %q", payload.Facebook)
	}
	if !strings.Contains(payload.LinkedIn, "linkedin.com/shareArticle") ||
		!strings.Contains(payload.LinkedIn, "Event+RSVP") {
		t.Errorf("linkedin = %q", payload.LinkedIn)
	}
}

func TestExportDownload(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")
	id := env.insertForm(t, "alice@example.com", false)

	submit := postForm("/aiform/"+itoa(id)+"/submit", url.Values{"name": {"Ada"}})
	if rec := env.do(submit); rec.Code != http.StatusSeeOther {
		t.Fatalf("submit status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/forms/"+itoa(id)+"/export", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Event RSVP.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}

func TestSignInFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/auth/sign-in", url.Values{
		"email": {"ada@example.com"},
		"name":  {"Ada"},
		"next":  {"/responses"},
	}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/responses" {
		t.Errorf("redirect = %q", loc)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatal("expected session cookie")
	}

	bad := env.do(postForm("/auth/sign-in", url.Values{"email": {"not-an-email"}}))
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("invalid email status = %d", bad.Code)
	}

	// Off-site redirect targets are discarded.
	offsite := env.do(postForm("/auth/sign-in", url.Values{
		"email": {"ada@example.com"},
		"next":  {"https://evil.example.com"},
	}))
	if loc := offsite.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("offsite redirect = %q, want /dashboard", loc)
	}
}

type stubRenderer struct{}

func (stubRenderer) Name() string        { return "plain" }
func (stubRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (stubRenderer) Render(context.Context, schema.FormDefinition, render.Options) ([]byte, error) {
	return []byte("rendered-by-plain"), nil
}

func TestServerResolvesRendererFromRegistry(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	sessions, err := auth.NewSessions("test-secret")
	if err != nil {
		t.Fatalf("new sessions: %v", err)
	}

	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{})
	srv, err := New(st, sessions, stubGenerator{def: sampleDefinition()},
		WithRegistry(registry), WithRendererName("plain"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	mux := http.NewServeMux()
	if err := srv.RegisterRoutes(mux); err != nil {
		t.Fatalf("register routes: %v", err)
	}

	encoded, err := sampleDefinition().Encode()
	if err != nil {
		t.Fatalf("encode definition: %v", err)
	}
	id, err := st.InsertForm(context.Background(), store.FormRecord{
		Definition: string(encoded),
		CreatedBy:  "alice@example.com",
		CreatedAt:  store.DisplayDate(time.Now()),
	})
	if err != nil {
		t.Fatalf("insert form: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/aiform/"+itoa(id), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "rendered-by-plain") {
		t.Fatalf("expected registry renderer output, got:\n%s", rec.Body.String())
	}
}

func TestServerRejectsUnknownRendererName(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	sessions, err := auth.NewSessions("test-secret")
	if err != nil {
		t.Fatalf("new sessions: %v", err)
	}

	if _, err := New(st, sessions, stubGenerator{}, WithRendererName("missing")); err == nil {
		t.Fatal("expected error for unregistered renderer name")
	}
}

func TestDashboardListsUnreadableFormForDeletion(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "alice@example.com")
	id, err := env.store.InsertForm(context.Background(), store.FormRecord{
		Definition: "{not json",
		CreatedBy:  "alice@example.com",
		CreatedAt:  store.DisplayDate(time.Now()),
	})
	if err != nil {
		t.Fatalf("insert form: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "definition unreadable") {
		t.Fatalf("expected degraded card, got:\n%s", body)
	}
	if !strings.Contains(body, "/forms/"+itoa(id)+"/delete") {
		t.Fatalf("expected delete action for unreadable form, got:\n%s", body)
	}
	if strings.Contains(body, "/forms/"+itoa(id)+"/edit") {
		t.Fatalf("edit link rendered for unreadable form:\n%s", body)
	}

	del := postForm("/forms/"+itoa(id)+"/delete", nil)
	del.AddCookie(cookie)
	if rec := env.do(del); rec.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, err := env.store.GetForm(context.Background(), id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected form gone, got %v", err)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
