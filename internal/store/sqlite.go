package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS farmer_submission (
	id         INTEGER PRIMARY KEY,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL
);`

// SQLiteStore persists submissions in a SQLite file so the log survives restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes Append's count-then-insert.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, fields map[string]json.RawMessage) (domain.Submission, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("encode submission: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM farmer_submission`).Scan(&count); err != nil {
		return domain.Submission{}, fmt.Errorf("count submissions: %w", err)
	}

	sub := domain.NewSubmission(count+1, fields)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO farmer_submission (id, created_at, payload) VALUES (?, ?, ?)`,
		sub.ID, sub.Timestamp.Format(time.RFC3339Nano), string(payload),
	); err != nil {
		return domain.Submission{}, fmt.Errorf("insert submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Submission{}, fmt.Errorf("commit append: %w", err)
	}
	return sub, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int) (domain.Submission, error) {
	var createdAt, payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, payload FROM farmer_submission WHERE id = ?`, id,
	).Scan(&createdAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Submission{}, ErrNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("query submission %d: %w", id, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("parse created_at for submission %d: %w", id, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return domain.Submission{}, fmt.Errorf("decode payload for submission %d: %w", id, err)
	}
	return domain.Submission{ID: id, Timestamp: ts, Fields: fields}, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM farmer_submission`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

// CheckReadiness pings the database.
func (s *SQLiteStore) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
