package scoring

import (
	"context"
	"sync"

	"github.com/hackgenix/fraudscore/internal/pagination"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu      sync.RWMutex
	batches []*Batch
}

// NewMemoryStore creates an in-memory batch audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) RecordBatch(ctx context.Context, batch *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := *batch
	s.batches = append(s.batches, &b)
	return nil
}

func (s *MemoryStore) ListBatches(ctx context.Context, limit int, before *pagination.Cursor) ([]*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Most recent first; batches are appended in chronological order.
	result := make([]*Batch, 0, limit)
	for i := len(s.batches) - 1; i >= 0 && len(result) < limit; i-- {
		if before != nil && !beforeCursor(s.batches[i], before) {
			continue
		}
		b := *s.batches[i]
		result = append(result, &b)
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

// beforeCursor reports whether b sorts strictly after the cursor position
// in the recent-first ordering (created_at DESC, id DESC).
func beforeCursor(b *Batch, c *pagination.Cursor) bool {
	if b.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	return b.CreatedAt.Equal(c.CreatedAt) && b.ID < c.ID
}
