// Package store holds the farmer submission log.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
)

// ErrNotFound is returned by Get when no submission has the requested ID.
var ErrNotFound = errors.New("submission not found")

// SubmissionStore is an append-only log of farmer submissions. Append assigns
// IDs as count+1, so IDs start at 1 and increase by one per call.
type SubmissionStore interface {
	Append(ctx context.Context, fields map[string]json.RawMessage) (domain.Submission, error)
	// Get reads a stored submission back. No route exposes it; it serves
	// operator tooling and tests that check what Append persisted.
	Get(ctx context.Context, id int) (domain.Submission, error)
	// Count reports the log size. Startup logs it so a reopened SQLite log
	// shows where IDs will resume.
	Count(ctx context.Context) (int, error)
	CheckReadiness(ctx context.Context) error
	Close() error
}
