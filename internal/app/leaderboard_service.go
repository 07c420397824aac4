package app

import (
	"context"
	"fmt"

	"quizify-service/internal/domain"
	"quizify-service/internal/pkg/logger"
)

// ScoreStore maintains the global cumulative scoreboard.
type ScoreStore interface {
	AddScore(ctx context.Context, userID string, delta int64) error
	TopScores(ctx context.Context, limit int64) ([]domain.LeaderboardEntry, error)
}

// LeaderboardService tracks cumulative scores across all quizzes.
type LeaderboardService struct {
	scores ScoreStore
	log    *logger.Logger
}

func NewLeaderboardService(scores ScoreStore, log *logger.Logger) *LeaderboardService {
	return &LeaderboardService{scores: scores, log: log.With("service", "leaderboard")}
}

// RecordScore adds an attempt's score to the user's total. Best effort: a
// scoreboard failure never fails the attempt submission.
func (s *LeaderboardService) RecordScore(ctx context.Context, userID string, score int) {
	if userID == "" || score <= 0 {
		return
	}
	if err := s.scores.AddScore(ctx, userID, int64(score)); err != nil {
		s.log.Warn("record score", "user", userID, "error", err)
	}
}

// Top returns the highest-scoring users with 1-indexed ranks.
func (s *LeaderboardService) Top(ctx context.Context, limit int64) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	entries, err := s.scores.TopScores(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return entries, nil
}
