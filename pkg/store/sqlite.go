package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formedit/pkg/document"
)

const schema = `
CREATE TABLE IF NOT EXISTS forms (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'draft',
	body       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// SQLStore persists each form as a single JSON document row in sqlite. The
// row carries title/status columns for listing without decoding bodies.
type SQLStore struct {
	db *sqlx.DB
}

// Open connects to the sqlite database at path (":memory:" works) and
// applies the schema.
func Open(path string) (*SQLStore, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// NewSQLStore wraps an existing connection; the caller owns its lifecycle.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Close releases the underlying connection.
func (s *SQLStore) Close() error { return s.db.Close() }

type formRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Status    string    `db:"status"`
	Body      string    `db:"body"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Load fetches the form stored under id.
func (s *SQLStore) Load(ctx context.Context, id string) (document.Form, error) {
	var row formRow
	err := s.db.GetContext(ctx, &row, `SELECT id, title, status, body, updated_at FROM forms WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Form{}, ErrNotFound
	}
	if err != nil {
		return document.Form{}, fmt.Errorf("store: load %q: %w", id, err)
	}
	var form document.Form
	if err := json.Unmarshal([]byte(row.Body), &form); err != nil {
		return document.Form{}, fmt.Errorf("store: decode %q: %w", id, err)
	}
	return form, nil
}

// Save upserts the normalized form. A temporary id triggers create
// semantics: the stored and returned form carry a fresh persistent id.
func (s *SQLStore) Save(ctx context.Context, form document.Form) (document.Form, error) {
	out := Normalize(form)
	if out.ID == "" || document.IsTemporaryID(out.ID) {
		out.ID = uuid.NewString()
	}

	body, err := json.Marshal(out)
	if err != nil {
		return document.Form{}, fmt.Errorf("store: encode %q: %w", out.ID, err)
	}

	row := formRow{
		ID:        out.ID,
		Title:     out.Title,
		Status:    string(out.Status),
		Body:      string(body),
		UpdatedAt: time.Now().UTC(),
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO forms (id, title, status, body, updated_at)
		VALUES (:id, :title, :status, :body, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			body = excluded.body,
			updated_at = excluded.updated_at`, row)
	if err != nil {
		return document.Form{}, fmt.Errorf("store: save %q: %w", out.ID, err)
	}
	return out, nil
}

// Delete removes the form stored under id. Unknown ids report ErrNotFound.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns summaries of every stored form, most recently updated first.
func (s *SQLStore) List(ctx context.Context) ([]Summary, error) {
	var out []Summary
	err := s.db.SelectContext(ctx, &out, `SELECT id, title, status, updated_at FROM forms ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}
