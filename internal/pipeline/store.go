package pipeline

import (
	"context"
	"encoding/json"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
	"github.com/couchcryptid/agri-assist-api/internal/store"
)

// PublishingStore wraps a SubmissionStore and hands every appended submission
// to the pipeline. The log stays authoritative: a full publish queue never
// fails the Append.
type PublishingStore struct {
	store.SubmissionStore
	pipeline *Pipeline
}

// NewPublishingStore decorates s so that appends are also published through p.
func NewPublishingStore(s store.SubmissionStore, p *Pipeline) *PublishingStore {
	return &PublishingStore{SubmissionStore: s, pipeline: p}
}

func (s *PublishingStore) Append(ctx context.Context, fields map[string]json.RawMessage) (domain.Submission, error) {
	sub, err := s.SubmissionStore.Append(ctx, fields)
	if err != nil {
		return domain.Submission{}, err
	}
	s.pipeline.Enqueue(sub)
	return sub, nil
}
