package memory

import (
	"context"
	"sync"

	"quizify-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string][]domain.QuizAttempt // userID -> attempts in insert order
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string][]domain.QuizAttempt)}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.UserID] = append(s.attempts[attempt.UserID], attempt)
	return nil
}

func (s *AttemptStore) CountCompleted(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, attempt := range s.attempts[userID] {
		if attempt.Completed {
			count++
		}
	}
	return count, nil
}

func (s *AttemptStore) FindByClientToken(_ context.Context, userID, token string) (domain.QuizAttempt, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, attempt := range s.attempts[userID] {
		if attempt.ClientToken == token {
			return attempt, true, nil
		}
	}
	return domain.QuizAttempt{}, false, nil
}

func (s *AttemptStore) ListByUser(_ context.Context, userID string, limit int) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.attempts[userID]
	out := make([]domain.QuizAttempt, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
