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

// QuizStore keeps quiz documents as JSONB rows.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizStore) ListQuizzes(ctx context.Context, page, limit int) (domain.QuizPage, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM quizzes`).Scan(&total); err != nil {
		return domain.QuizPage{}, fmt.Errorf("count quizzes: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id,
		       coalesce(data->>'title', ''),
		       coalesce(data->>'category', ''),
		       coalesce(jsonb_array_length(data->'questions'), 0)
		FROM quizzes
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return domain.QuizPage{}, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.QuizSummary, 0, limit)
	for rows.Next() {
		var summary domain.QuizSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Category, &summary.QuestionCount); err != nil {
			return domain.QuizPage{}, fmt.Errorf("scan quiz row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return domain.QuizPage{}, fmt.Errorf("list quizzes: %w", err)
	}
	return domain.QuizPage{Quizzes: summaries, Page: page, Limit: limit, Total: total}, nil
}

// UpsertQuiz writes a quiz document. Used by the seed command.
func (s *QuizStore) UpsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quizzes (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, quiz.ID, raw)
	if err != nil {
		return fmt.Errorf("upsert quiz: %w", err)
	}
	return nil
}
