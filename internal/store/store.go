// Package store persists form records and their responses in SQLite. Every
// read re-fetches from the database; no caching sits in front of it, and
// concurrent definition writers last-write-win with no version check.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an owner-scoped read or write matches no row,
// either because the id is stale or the record belongs to someone else.
var ErrNotFound = errors.New("store: record not found")

const schemaDDL = `
CREATE TABLE IF NOT EXISTS forms (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    definition       TEXT NOT NULL,
    theme            TEXT NOT NULL DEFAULT 'light',
    background       TEXT NOT NULL DEFAULT 'default',
    style            TEXT NOT NULL DEFAULT 'none',
    created_by       TEXT NOT NULL,
    created_at       TEXT NOT NULL,
    sign_in_required INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS responses (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    answers    TEXT NOT NULL,
    created_by TEXT NOT NULL DEFAULT 'Anonymous',
    created_at TEXT NOT NULL,
    form_id    INTEGER NOT NULL REFERENCES forms(id)
);

CREATE INDEX IF NOT EXISTS idx_forms_created_by ON forms(created_by);
CREATE INDEX IF NOT EXISTS idx_responses_form_id ON responses(form_id);
`

// FormRecord is the persisted envelope around a serialized FormDefinition
// plus display preferences and ownership.
type FormRecord struct {
	ID             int64
	Definition     string
	Theme          string
	Background     string
	Style          string
	CreatedBy      string
	CreatedAt      string
	SignInRequired bool
}

// ResponseRecord is one submitted answer blob referencing its form.
type ResponseRecord struct {
	ID        int64
	Answers   string
	CreatedBy string
	CreatedAt string
	FormID    int64
}

// DisplayDate formats creation timestamps the way records store them:
// DD-MM-YYYY display strings rather than machine timestamps.
func DisplayDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// modernc's driver serialises writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanForm(row interface{ Scan(...any) error }) (FormRecord, error) {
	var rec FormRecord
	var gated int
	err := row.Scan(&rec.ID, &rec.Definition, &rec.Theme, &rec.Background,
		&rec.Style, &rec.CreatedBy, &rec.CreatedAt, &gated)
	if err != nil {
		return FormRecord{}, err
	}
	rec.SignInRequired = gated != 0
	return rec, nil
}

const formColumns = "id, definition, theme, background, style, created_by, created_at, sign_in_required"

// InsertForm stores a new form record and returns its id.
func (s *Store) InsertForm(ctx context.Context, rec FormRecord) (int64, error) {
	if rec.Theme == "" {
		rec.Theme = "light"
	}
	if rec.Background == "" {
		rec.Background = "default"
	}
	if rec.Style == "" {
		rec.Style = "none"
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO forms (definition, theme, background, style, created_by, created_at, sign_in_required)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Definition, rec.Theme, rec.Background, rec.Style,
		rec.CreatedBy, rec.CreatedAt, boolToInt(rec.SignInRequired))
	if err != nil {
		return 0, fmt.Errorf("store: insert form: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert form id: %w", err)
	}
	return id, nil
}

// GetForm fetches a form by id regardless of owner. The public fill route
// uses this; everything owner-facing goes through GetFormForOwner.
func (s *Store) GetForm(ctx context.Context, id int64) (FormRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+formColumns+" FROM forms WHERE id = ?", id)
	rec, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return FormRecord{}, ErrNotFound
	}
	if err != nil {
		return FormRecord{}, fmt.Errorf("store: get form %d: %w", id, err)
	}
	return rec, nil
}

// GetFormForOwner fetches a form scoped to id plus owner email.
func (s *Store) GetFormForOwner(ctx context.Context, id int64, owner string) (FormRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+formColumns+" FROM forms WHERE id = ? AND created_by = ?", id, owner)
	rec, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return FormRecord{}, ErrNotFound
	}
	if err != nil {
		return FormRecord{}, fmt.Errorf("store: get form %d for %s: %w", id, owner, err)
	}
	return rec, nil
}

// ListFormsByOwner returns the owner's forms, newest first.
func (s *Store) ListFormsByOwner(ctx context.Context, owner string) ([]FormRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+formColumns+" FROM forms WHERE created_by = ? ORDER BY id DESC", owner)
	if err != nil {
		return nil, fmt.Errorf("store: list forms for %s: %w", owner, err)
	}
	defer rows.Close()

	var records []FormRecord
	for rows.Next() {
		rec, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan form: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list forms for %s: %w", owner, err)
	}
	return records, nil
}

// UpdateFormDefinition overwrites the serialized definition of an
// owner-scoped form. A write matching no row returns ErrNotFound instead of
// succeeding as a silent no-op.
func (s *Store) UpdateFormDefinition(ctx context.Context, id int64, owner, definition string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE forms SET definition = ? WHERE id = ? AND created_by = ?",
		definition, id, owner)
	if err != nil {
		return fmt.Errorf("store: update form %d: %w", id, err)
	}
	return requireRow(result, id)
}

// Preferences are the display settings stored beside the definition.
type Preferences struct {
	Theme          string
	Background     string
	Style          string
	SignInRequired bool
}

// UpdateFormPreferences writes the form's display preferences and sign-in
// gate, owner-scoped.
func (s *Store) UpdateFormPreferences(ctx context.Context, id int64, owner string, prefs Preferences) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE forms SET theme = ?, background = ?, style = ?, sign_in_required = ?
		WHERE id = ? AND created_by = ?`,
		prefs.Theme, prefs.Background, prefs.Style, boolToInt(prefs.SignInRequired), id, owner)
	if err != nil {
		return fmt.Errorf("store: update preferences for form %d: %w", id, err)
	}
	return requireRow(result, id)
}

// DeleteForm removes an owner-scoped form and all of its responses in one
// transaction. Responses go first so the form row never outlives a failed
// cascade.
func (s *Store) DeleteForm(ctx context.Context, id int64, owner string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin delete form %d: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM responses WHERE form_id = ?", id); err != nil {
		return fmt.Errorf("store: delete responses for form %d: %w", id, err)
	}
	result, err := tx.ExecContext(ctx,
		"DELETE FROM forms WHERE id = ? AND created_by = ?", id, owner)
	if err != nil {
		return fmt.Errorf("store: delete form %d: %w", id, err)
	}
	if err := requireRow(result, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit delete form %d: %w", id, err)
	}
	return nil
}

// InsertResponse stores one submission. Responses are never mutated after
// creation.
func (s *Store) InsertResponse(ctx context.Context, rec ResponseRecord) (int64, error) {
	if rec.CreatedBy == "" {
		rec.CreatedBy = "Anonymous"
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (answers, created_by, created_at, form_id)
		VALUES (?, ?, ?, ?)`,
		rec.Answers, rec.CreatedBy, rec.CreatedAt, rec.FormID)
	if err != nil {
		return 0, fmt.Errorf("store: insert response: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert response id: %w", err)
	}
	return id, nil
}

// ListResponses returns every response for a form, oldest first.
func (s *Store) ListResponses(ctx context.Context, formID int64) ([]ResponseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, answers, created_by, created_at, form_id
		FROM responses WHERE form_id = ? ORDER BY id ASC`, formID)
	if err != nil {
		return nil, fmt.Errorf("store: list responses for form %d: %w", formID, err)
	}
	defer rows.Close()

	var records []ResponseRecord
	for rows.Next() {
		var rec ResponseRecord
		if err := rows.Scan(&rec.ID, &rec.Answers, &rec.CreatedBy, &rec.CreatedAt, &rec.FormID); err != nil {
			return nil, fmt.Errorf("store: scan response: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list responses for form %d: %w", formID, err)
	}
	return records, nil
}

// CountResponses returns how many responses a form has collected.
func (s *Store) CountResponses(ctx context.Context, formID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM responses WHERE form_id = ?", formID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("store: count responses for form %d: %w", formID, err)
	}
	return count, nil
}

func requireRow(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected for form %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
