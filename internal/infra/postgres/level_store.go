package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizify-service/internal/domain"
)

// LevelStore holds the one-row-per-user level records.
type LevelStore struct {
	pool *pgxpool.Pool
}

func NewLevelStore(pool *pgxpool.Pool) *LevelStore {
	return &LevelStore{pool: pool}
}

func (s *LevelStore) GetLevel(ctx context.Context, userID string) (domain.UserLevel, bool, error) {
	var record domain.UserLevel
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, level, total_quizzes_answered, last_level_up
		FROM user_levels WHERE user_id=$1`, userID).
		Scan(&record.UserID, &record.Level, &record.TotalQuizzesAnswered, &record.LastLevelUp)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserLevel{}, false, nil
	}
	if err != nil {
		return domain.UserLevel{}, false, fmt.Errorf("load level record: %w", err)
	}
	return record, true, nil
}

func (s *LevelStore) SaveLevel(ctx context.Context, record domain.UserLevel) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_levels (user_id, level, total_quizzes_answered, last_level_up)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE SET
			level = EXCLUDED.level,
			total_quizzes_answered = EXCLUDED.total_quizzes_answered,
			last_level_up = EXCLUDED.last_level_up`,
		record.UserID, record.Level, record.TotalQuizzesAnswered, record.LastLevelUp)
	if err != nil {
		return fmt.Errorf("save level record: %w", err)
	}
	return nil
}
