package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizify-service/internal/domain"
)

// TaskStore persists per-user daily task instances.
type TaskStore struct {
	pool *pgxpool.Pool
}

func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

func (s *TaskStore) ListTasksForDay(ctx context.Context, userID, day string) ([]domain.DailyTask, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, description, goal, progress, completed, assigned_on, completed_at
		FROM daily_tasks
		WHERE user_id=$1 AND assigned_on=$2
		ORDER BY title`, userID, day)
	if err != nil {
		return nil, fmt.Errorf("list daily tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.DailyTask
	for rows.Next() {
		var task domain.DailyTask
		if err := rows.Scan(&task.ID, &task.UserID, &task.Title, &task.Description,
			&task.Goal, &task.Progress, &task.Completed, &task.AssignedOn, &task.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan daily task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list daily tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) SaveTask(ctx context.Context, task domain.DailyTask) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_tasks
			(id, user_id, title, description, goal, progress, completed, assigned_on, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			progress = EXCLUDED.progress,
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at`,
		task.ID, task.UserID, task.Title, task.Description, task.Goal,
		task.Progress, task.Completed, task.AssignedOn, task.CompletedAt)
	if err != nil {
		return fmt.Errorf("save daily task: %w", err)
	}
	return nil
}

func (s *TaskStore) GetTask(ctx context.Context, userID, taskID string) (domain.DailyTask, bool, error) {
	var task domain.DailyTask
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, goal, progress, completed, assigned_on, completed_at
		FROM daily_tasks
		WHERE id=$1 AND user_id=$2`, taskID, userID).
		Scan(&task.ID, &task.UserID, &task.Title, &task.Description,
			&task.Goal, &task.Progress, &task.Completed, &task.AssignedOn, &task.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DailyTask{}, false, nil
	}
	if err != nil {
		return domain.DailyTask{}, false, fmt.Errorf("load daily task: %w", err)
	}
	return task, true, nil
}

func (s *TaskStore) DeleteTasksBefore(ctx context.Context, day string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM daily_tasks WHERE assigned_on < $1`, day)
	if err != nil {
		return fmt.Errorf("delete old daily tasks: %w", err)
	}
	return nil
}
