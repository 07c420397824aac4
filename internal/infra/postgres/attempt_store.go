package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizify-service/internal/domain"
)

// AttemptStore persists quiz attempts. Rows are insert-only.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.QuizAttempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts
			(id, quiz_id, user_id, answers, score, total_possible_score,
			 time_spent_seconds, client_token, completed, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		attempt.ID, attempt.QuizID, attempt.UserID, answers, attempt.Score,
		attempt.TotalPossibleScore, attempt.TimeSpentSeconds, attempt.ClientToken,
		attempt.Completed, attempt.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) CountCompleted(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM quiz_attempts WHERE user_id=$1 AND completed`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}

func (s *AttemptStore) FindByClientToken(ctx context.Context, userID, token string) (domain.QuizAttempt, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, quiz_id, user_id, answers, score, total_possible_score,
		       time_spent_seconds, client_token, completed, completed_at
		FROM quiz_attempts
		WHERE user_id=$1 AND client_token=$2`, userID, token)
	attempt, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizAttempt{}, false, nil
	}
	if err != nil {
		return domain.QuizAttempt{}, false, fmt.Errorf("find attempt by token: %w", err)
	}
	return attempt, true, nil
}

func (s *AttemptStore) ListByUser(ctx context.Context, userID string, limit int) ([]domain.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, quiz_id, user_id, answers, score, total_possible_score,
		       time_spent_seconds, client_token, completed, completed_at
		FROM quiz_attempts
		WHERE user_id=$1
		ORDER BY completed_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.QuizAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(row rowScanner) (domain.QuizAttempt, error) {
	var attempt domain.QuizAttempt
	var answers []byte
	err := row.Scan(&attempt.ID, &attempt.QuizID, &attempt.UserID, &answers,
		&attempt.Score, &attempt.TotalPossibleScore, &attempt.TimeSpentSeconds,
		&attempt.ClientToken, &attempt.Completed, &attempt.CompletedAt)
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &attempt.Answers); err != nil {
			return domain.QuizAttempt{}, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return attempt, nil
}
