package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
)

// MemoryStore keeps submissions for the lifetime of the process.
type MemoryStore struct {
	mu          sync.Mutex
	submissions []domain.Submission
}

// NewMemoryStore creates an empty in-process submission log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(_ context.Context, fields map[string]json.RawMessage) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := domain.NewSubmission(len(m.submissions)+1, fields)
	m.submissions = append(m.submissions, s)
	return s, nil
}

func (m *MemoryStore) Get(_ context.Context, id int) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 1 || id > len(m.submissions) {
		return domain.Submission{}, ErrNotFound
	}
	return m.submissions[id-1], nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.submissions), nil
}

// CheckReadiness always succeeds; the log lives in memory.
func (m *MemoryStore) CheckReadiness(_ context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
