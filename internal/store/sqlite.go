package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-promptform/pkg/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS forms (
	id         TEXT PRIMARY KEY,
	prompt     TEXT NOT NULL,
	schema     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS responses (
	id           TEXT PRIMARY KEY,
	form_id      TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
	form_values  TEXT NOT NULL,
	status       TEXT NOT NULL,
	submitted_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS attachments (
	id          TEXT PRIMARY KEY,
	response_id TEXT NOT NULL REFERENCES responses(id) ON DELETE CASCADE,
	field       TEXT NOT NULL,
	filename    TEXT NOT NULL,
	mime_type   TEXT NOT NULL,
	size        INTEGER NOT NULL,
	data        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_responses_form ON responses(form_id);
CREATE INDEX IF NOT EXISTS idx_attachments_response ON attachments(response_id);
`

// SQLite is the Store implementation backed by a local SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// Open opens (and migrates) the database at path with foreign keys on.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) SaveForm(ctx context.Context, rec FormRecord) error {
	raw, err := json.Marshal(rec.Schema)
	if err != nil {
		return fmt.Errorf("store: encode schema: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO forms(id,prompt,schema,created_at,updated_at) VALUES (?,?,?,?,?)`,
		rec.ID, rec.Prompt, string(raw), rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (s *SQLite) GetForm(ctx context.Context, id string) (FormRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,prompt,schema,created_at,updated_at FROM forms WHERE id=?`, id)
	return scanForm(row.Scan)
}

func (s *SQLite) ListForms(ctx context.Context) ([]FormRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,prompt,schema,created_at,updated_at FROM forms ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FormRecord
	for rows.Next() {
		rec, err := scanForm(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) UpdateFormSchema(ctx context.Context, id string, schema model.FormSchema) error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("store: encode schema: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE forms SET schema=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, string(raw), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteForm(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) SaveResponse(ctx context.Context, rec ResponseRecord, files []AttachmentRecord) error {
	values, err := json.Marshal(rec.Values)
	if err != nil {
		return fmt.Errorf("store: encode values: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO responses(id,form_id,form_values,status,submitted_at) VALUES (?,?,?,?,?)`,
		rec.ID, rec.FormID, string(values), rec.Status, rec.SubmittedAt); err != nil {
		return err
	}
	for _, file := range files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attachments(id,response_id,field,filename,mime_type,size,data) VALUES (?,?,?,?,?,?,?)`,
			file.ID, rec.ID, file.Field, file.Filename, file.MIMEType, file.Size, file.Data); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) ListResponses(ctx context.Context, formID string) ([]ResponseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,form_id,form_values,status,submitted_at FROM responses WHERE form_id=? ORDER BY submitted_at DESC`,
		formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResponseRecord
	for rows.Next() {
		var rec ResponseRecord
		var values string
		if err := rows.Scan(&rec.ID, &rec.FormID, &values, &rec.Status, &rec.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(values), &rec.Values); err != nil {
			return nil, fmt.Errorf("store: decode values for response %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) ListAttachments(ctx context.Context, responseID string) ([]AttachmentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,response_id,field,filename,mime_type,size,data FROM attachments WHERE response_id=?`,
		responseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttachmentRecord
	for rows.Next() {
		var rec AttachmentRecord
		if err := rows.Scan(&rec.ID, &rec.ResponseID, &rec.Field, &rec.Filename, &rec.MIMEType, &rec.Size, &rec.Data); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanForm(scan func(dest ...any) error) (FormRecord, error) {
	var rec FormRecord
	var raw string
	err := scan(&rec.ID, &rec.Prompt, &raw, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(raw), &rec.Schema); err != nil {
		return rec, fmt.Errorf("store: decode schema for form %s: %w", rec.ID, err)
	}
	return rec, nil
}
