// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
)

var _ storage.Storage = (*Store)(nil)

// Store keeps notifications in a slice indexed by Seq-1.
type Store struct {
	mu     sync.RWMutex
	items  []*models.Notification
	closed bool
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	if want := uint64(len(s.items)) + 1; n.Seq != want {
		return fmt.Errorf("%w: got %d, want %d", storage.ErrOutOfOrder, n.Seq, want)
	}
	cp := *n
	s.items = append(s.items, &cp)
	return nil
}

func (s *Store) List(_ context.Context, from uint64, limit int) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	if from == 0 {
		from = 1
	}
	if from > uint64(len(s.items)) {
		return nil, nil
	}
	items := s.items[from-1:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	out := make([]*models.Notification, len(items))
	for i, n := range items {
		cp := *n
		out[i] = &cp
	}
	return out, nil
}

func (s *Store) LastSeq(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.items)), nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
