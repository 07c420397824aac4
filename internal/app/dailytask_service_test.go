package app_test

import (
	"context"
	"testing"
	"time"

	"quizify-service/internal/app"
	"quizify-service/internal/domain"
	"quizify-service/internal/infra/memory"
	"quizify-service/internal/pkg/logger"
)

func newTestTaskService(now *time.Time) (*app.DailyTaskService, *captureNotifier) {
	notifier := newCaptureNotifier()
	svc := app.NewDailyTaskServiceWithClock(
		memory.NewTaskStore(),
		memory.NewNotificationStore(),
		notifier,
		logger.NewNop(),
		func() time.Time { return *now },
	)
	return svc, notifier
}

func TestTasksAssignedLazily(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestTaskService(&now)

	tasks, err := svc.TasksForToday(context.Background(), "u1")
	if err != nil {
		t.Fatalf("tasks for today: %v", err)
	}
	if len(tasks) != len(app.DefaultTaskTemplates) {
		t.Fatalf("expected %d tasks, got %d", len(app.DefaultTaskTemplates), len(tasks))
	}
	for _, task := range tasks {
		if task.AssignedOn != "2026-08-28" || task.Completed || task.Progress != 0 {
			t.Fatalf("unexpected fresh task: %+v", task)
		}
	}

	// Second read must not re-assign.
	again, err := svc.TasksForToday(context.Background(), "u1")
	if err != nil {
		t.Fatalf("tasks for today: %v", err)
	}
	if len(again) != len(tasks) {
		t.Fatalf("expected same task set, got %d vs %d", len(again), len(tasks))
	}
}

func TestQuizCompletionAdvancesTasks(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, notifier := newTestTaskService(&now)

	// Imperfect run advances quiz-count tasks but not Perfect Run.
	svc.RecordQuizCompletion(context.Background(), "u1", false)
	tasks, _ := svc.TasksForToday(context.Background(), "u1")
	for _, task := range tasks {
		switch task.Title {
		case "Perfect Run":
			if task.Progress != 0 {
				t.Fatalf("Perfect Run advanced by imperfect score: %+v", task)
			}
		case "Warm Up":
			if !task.Completed {
				t.Fatalf("Warm Up (goal 1) should complete after one quiz: %+v", task)
			}
		case "Daily Quizzer":
			if task.Progress != 1 || task.Completed {
				t.Fatalf("Daily Quizzer should be at 1/3: %+v", task)
			}
		}
	}

	// Completing Warm Up pushed a notification event.
	found := false
	for _, event := range notifier.events["u1"] {
		if created, ok := event.(domain.NotificationCreatedEvent); ok {
			if created.Notification.Type == domain.NotificationDailyTask {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected a daily-task notification event")
	}

	// A perfect run finishes Perfect Run.
	svc.RecordQuizCompletion(context.Background(), "u1", true)
	tasks, _ = svc.TasksForToday(context.Background(), "u1")
	for _, task := range tasks {
		if task.Title == "Perfect Run" && !task.Completed {
			t.Fatalf("Perfect Run should complete on perfect score: %+v", task)
		}
	}
}

func TestTasksResetNextDay(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestTaskService(&now)

	svc.RecordQuizCompletion(context.Background(), "u1", true)

	// Next day: yesterday's instances expire and a fresh set is assigned.
	now = now.Add(24 * time.Hour)
	if err := svc.ExpireOldTasks(context.Background()); err != nil {
		t.Fatalf("expire: %v", err)
	}
	tasks, err := svc.TasksForToday(context.Background(), "u1")
	if err != nil {
		t.Fatalf("tasks for today: %v", err)
	}
	for _, task := range tasks {
		if task.AssignedOn != "2026-08-29" || task.Progress != 0 || task.Completed {
			t.Fatalf("expected fresh next-day task, got %+v", task)
		}
	}
}

func TestCompleteTask(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestTaskService(&now)

	tasks, _ := svc.TasksForToday(context.Background(), "u1")
	done, err := svc.Complete(context.Background(), "u1", tasks[0].ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed || done.Progress != done.Goal || done.CompletedAt == nil {
		t.Fatalf("unexpected completed task: %+v", done)
	}

	if _, err := svc.Complete(context.Background(), "u1", "missing"); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
