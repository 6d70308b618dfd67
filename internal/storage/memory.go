package storage

import (
	"context"
	"sync"

	"github.com/axz356574-a11y/Confession/internal/models"
)

// MemoryStorage keeps the confession archive in process memory. Used when no
// database is configured; contents are lost on restart.
type MemoryStorage struct {
	mu          sync.RWMutex
	confessions map[string]*models.Confession
	order       []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		confessions: make(map[string]*models.Confession),
	}
}

func (s *MemoryStorage) SaveConfession(ctx context.Context, confession *models.Confession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *confession
	if _, exists := s.confessions[c.ID]; !exists {
		s.order = append(s.order, c.ID)
	}
	s.confessions[c.ID] = &c
	return nil
}

func (s *MemoryStorage) GetConfession(ctx context.Context, id string) (*models.Confession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	confession, exists := s.confessions[id]
	if !exists {
		return nil, ErrNotFound
	}
	c := *confession
	return &c, nil
}

// ListRecent returns the most recently saved confessions, newest first.
func (s *MemoryStorage) ListRecent(ctx context.Context, limit int) ([]*models.Confession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}

	out := make([]*models.Confession, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		c := *s.confessions[s.order[i]]
		out = append(out, &c)
	}
	return out, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
