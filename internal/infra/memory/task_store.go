package memory

import (
	"context"
	"sync"

	"quizify-service/internal/domain"
)

// TaskStore is an in-memory implementation of app.TaskStore.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]domain.DailyTask // task ID -> task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]domain.DailyTask)}
}

func (s *TaskStore) ListTasksForDay(_ context.Context, userID, day string) ([]domain.DailyTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DailyTask
	for _, task := range s.tasks {
		if task.UserID == userID && task.AssignedOn == day {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *TaskStore) SaveTask(_ context.Context, task domain.DailyTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

func (s *TaskStore) GetTask(_ context.Context, userID, taskID string) (domain.DailyTask, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return domain.DailyTask{}, false, nil
	}
	return task, true, nil
}

func (s *TaskStore) DeleteTasksBefore(_ context.Context, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, task := range s.tasks {
		if task.AssignedOn < day {
			delete(s.tasks, id)
		}
	}
	return nil
}
