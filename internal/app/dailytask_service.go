package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quizify-service/internal/domain"
	"quizify-service/internal/pkg/logger"
)

// TaskStore persists per-user daily task instances.
type TaskStore interface {
	ListTasksForDay(ctx context.Context, userID, day string) ([]domain.DailyTask, error)
	SaveTask(ctx context.Context, task domain.DailyTask) error
	GetTask(ctx context.Context, userID, taskID string) (domain.DailyTask, bool, error)
	DeleteTasksBefore(ctx context.Context, day string) error
}

// DefaultTaskTemplates is the blueprint set instantiated per user per day.
var DefaultTaskTemplates = []domain.TaskTemplate{
	{Title: "Daily Quizzer", Description: "Complete 3 quizzes today", Goal: 3},
	{Title: "Perfect Run", Description: "Finish a quiz with a full score", Goal: 1},
	{Title: "Warm Up", Description: "Complete 1 quiz today", Goal: 1},
}

// DailyTaskService assigns the day's tasks lazily on first read and advances
// them as quiz attempts come in.
type DailyTaskService struct {
	tasks         TaskStore
	templates     []domain.TaskTemplate
	notifications NotificationStore
	notifier      Notifier
	log           *logger.Logger
	now           func() time.Time
}

func NewDailyTaskService(tasks TaskStore, notifications NotificationStore, notifier Notifier, log *logger.Logger) *DailyTaskService {
	return NewDailyTaskServiceWithClock(tasks, notifications, notifier, log, time.Now)
}

// NewDailyTaskServiceWithClock is test-only for deterministic days.
func NewDailyTaskServiceWithClock(tasks TaskStore, notifications NotificationStore, notifier Notifier, log *logger.Logger, now func() time.Time) *DailyTaskService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &DailyTaskService{
		tasks:         tasks,
		templates:     DefaultTaskTemplates,
		notifications: notifications,
		notifier:      notifier,
		log:           log.With("service", "daily-tasks"),
		now:           now,
	}
}

// TasksForToday returns the user's tasks for the current day, instantiating
// the template set on first access.
func (s *DailyTaskService) TasksForToday(ctx context.Context, userID string) ([]domain.DailyTask, error) {
	if userID == "" {
		return nil, domain.ErrUserRequired
	}
	day := s.today()
	tasks, err := s.tasks.ListTasksForDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("list daily tasks: %w", err)
	}
	if len(tasks) > 0 {
		return tasks, nil
	}
	for _, tpl := range s.templates {
		task := domain.DailyTask{
			ID:          uuid.NewString(),
			UserID:      userID,
			Title:       tpl.Title,
			Description: tpl.Description,
			Goal:        tpl.Goal,
			AssignedOn:  day,
		}
		if err := s.tasks.SaveTask(ctx, task); err != nil {
			return nil, fmt.Errorf("assign daily task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Complete force-finishes a task (explicit user action).
func (s *DailyTaskService) Complete(ctx context.Context, userID, taskID string) (domain.DailyTask, error) {
	if userID == "" {
		return domain.DailyTask{}, domain.ErrUserRequired
	}
	task, ok, err := s.tasks.GetTask(ctx, userID, taskID)
	if err != nil {
		return domain.DailyTask{}, fmt.Errorf("load daily task: %w", err)
	}
	if !ok {
		return domain.DailyTask{}, domain.ErrTaskNotFound
	}
	if task.Completed {
		return task, nil
	}
	s.finish(&task)
	if err := s.tasks.SaveTask(ctx, task); err != nil {
		return domain.DailyTask{}, fmt.Errorf("save daily task: %w", err)
	}
	return task, nil
}

// RecordQuizCompletion advances today's tasks after a recorded attempt.
// Task failures never fail the submission.
func (s *DailyTaskService) RecordQuizCompletion(ctx context.Context, userID string, perfect bool) {
	tasks, err := s.TasksForToday(ctx, userID)
	if err != nil {
		s.log.Warn("advance daily tasks", "user", userID, "error", err)
		return
	}
	for _, task := range tasks {
		if task.Completed {
			continue
		}
		if task.Title == "Perfect Run" && !perfect {
			continue
		}
		task.Progress++
		if task.Progress >= task.Goal {
			s.finish(&task)
			s.announceTaskDone(ctx, userID, task)
		}
		if err := s.tasks.SaveTask(ctx, task); err != nil {
			s.log.Warn("save daily task", "user", userID, "task", task.ID, "error", err)
		}
	}
}

// ExpireOldTasks removes task instances assigned before the current day.
// Called by the scheduler.
func (s *DailyTaskService) ExpireOldTasks(ctx context.Context) error {
	return s.tasks.DeleteTasksBefore(ctx, s.today())
}

func (s *DailyTaskService) finish(task *domain.DailyTask) {
	now := s.now()
	task.Progress = task.Goal
	task.Completed = true
	task.CompletedAt = &now
}

func (s *DailyTaskService) announceTaskDone(ctx context.Context, userID string, task domain.DailyTask) {
	notif := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     "Daily Task Complete",
		Message:   fmt.Sprintf("%q is done for today.", task.Title),
		Type:      domain.NotificationDailyTask,
		CreatedAt: s.now(),
	}
	if err := s.notifications.CreateNotification(ctx, notif); err != nil {
		s.log.Warn("persist task notification", "user", userID, "error", err)
		return
	}
	s.notifier.EmitToUser(userID, domain.NotificationCreatedEvent{Notification: notif})
}

func (s *DailyTaskService) today() string {
	return s.now().Format("2006-01-02")
}
