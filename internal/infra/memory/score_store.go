package memory

import (
	"context"
	"sort"
	"sync"

	"quizify-service/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore.
type ScoreStore struct {
	mu     sync.RWMutex
	scores map[string]int64
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{scores: make(map[string]int64)}
}

func (s *ScoreStore) AddScore(_ context.Context, userID string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[userID] += delta
	return nil
}

func (s *ScoreStore) TopScores(_ context.Context, limit int64) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.scores))
	for userID, score := range s.scores {
		entries = append(entries, domain.LeaderboardEntry{UserID: userID, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	if int64(len(entries)) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = int64(i) + 1
	}
	return entries, nil
}
