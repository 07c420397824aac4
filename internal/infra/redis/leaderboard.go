package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"quizify-service/internal/domain"
)

const leaderboardKey = "leaderboard:score"

// Leaderboard keeps cumulative user scores in a Redis ZSET.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

// AddScore increments the user's total score. ZINCRBY is atomic, so
// concurrent submissions never lose an update.
func (l *Leaderboard) AddScore(ctx context.Context, userID string, delta int64) error {
	return l.client.ZIncrBy(ctx, leaderboardKey, float64(delta), userID).Err()
}

// TopScores returns the highest-scoring users, best first, with 1-indexed ranks.
func (l *Leaderboard) TopScores(ctx context.Context, limit int64) ([]domain.LeaderboardEntry, error) {
	results, err := l.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, len(results))
	for i, result := range results {
		entries[i] = domain.LeaderboardEntry{
			UserID: result.Member.(string),
			Score:  int64(result.Score),
			Rank:   int64(i) + 1,
		}
	}
	return entries, nil
}
