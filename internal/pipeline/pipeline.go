// Package pipeline publishes stored farmer submissions to a downstream sink in
// batches, off the request path.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
	"github.com/couchcryptid/agri-assist-api/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	drainTimeout   = 5 * time.Second
)

// BatchLoader writes multiple submissions to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, submissions []domain.Submission) error
}

// Pipeline buffers submissions in a bounded queue and flushes them to a
// BatchLoader when a batch fills or the flush interval elapses.
type Pipeline struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	queue         chan domain.Submission
	batchSize     int
	flushInterval time.Duration

	// mu guards stopped. Enqueue holds it shared so nothing lands in the
	// queue after drain has emptied it.
	mu      sync.RWMutex
	stopped bool
}

// New creates a Pipeline. queueSize bounds how many submissions may wait for
// publishing before Enqueue starts dropping them.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration, queueSize int) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	if queueSize < batchSize {
		queueSize = batchSize
	}
	return &Pipeline{
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		queue:         make(chan domain.Submission, queueSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Enqueue hands a submission to the publisher without blocking. It returns
// false, and counts a publish error, when the queue is full or Run has
// already stopped.
func (p *Pipeline) Enqueue(s domain.Submission) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publisher stopped, submission not published", "id", s.ID)
		return false
	}
	select {
	case p.queue <- s:
		return true
	default:
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish queue full, submission not published", "id", s.ID)
		return false
	}
}

// Run flushes queued submissions until the context is cancelled, then makes
// one bounded attempt to publish whatever is still buffered.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)
	p.metrics.PublisherRunning.Set(1)
	defer p.metrics.PublisherRunning.Set(0)

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.Submission, 0, p.batchSize)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			p.drain(batch)
			return nil

		case s := <-p.queue:
			batch = append(batch, s)
			if len(batch) < p.batchSize {
				continue
			}
			if !p.flush(ctx, batch) {
				p.drain(batch)
				return nil
			}
			batch = make([]domain.Submission, 0, p.batchSize)

		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
			if !p.flush(ctx, batch) {
				p.drain(batch)
				return nil
			}
			batch = make([]domain.Submission, 0, p.batchSize)
		}
	}
}

// flush loads the batch, retrying with exponential backoff. Returns false if
// the context was cancelled before the batch was delivered.
func (p *Pipeline) flush(ctx context.Context, batch []domain.Submission) bool {
	backoff := initialBackoff
	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.SubmissionsPublished.Add(float64(len(batch)))
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.metrics.PublishErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "retry_in", backoff)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return false
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
}

// drain collects anything left in the queue and makes a single attempt to
// publish it, detached from the cancelled run context.
func (p *Pipeline) drain(batch []domain.Submission) {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	// Run is the only consumer and Enqueue now refuses, so this cannot block.
	for len(p.queue) > 0 {
		batch = append(batch, <-p.queue)
	}
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := p.loader.LoadBatch(ctx, batch); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("final flush failed, submissions not published", "error", err, "batch_size", len(batch))
		return
	}
	p.metrics.SubmissionsPublished.Add(float64(len(batch)))
	p.logger.Info("final flush complete", "batch_size", len(batch))
}
