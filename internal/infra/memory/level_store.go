package memory

import (
	"context"
	"sync"

	"quizify-service/internal/domain"
)

// LevelStore is an in-memory implementation of app.LevelStore.
type LevelStore struct {
	mu      sync.RWMutex
	records map[string]domain.UserLevel
}

func NewLevelStore() *LevelStore {
	return &LevelStore{records: make(map[string]domain.UserLevel)}
}

func (s *LevelStore) GetLevel(_ context.Context, userID string) (domain.UserLevel, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID]
	return record, ok, nil
}

func (s *LevelStore) SaveLevel(_ context.Context, record domain.UserLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.UserID] = record
	return nil
}
