package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"quizify-service/internal/app"
	"quizify-service/internal/domain"
	"quizify-service/internal/infra/memory"
	"quizify-service/internal/pkg/logger"
)

// captureNotifier records emitted events per user.
type captureNotifier struct {
	mu     sync.Mutex
	events map[string][]domain.Event
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{events: make(map[string][]domain.Event)}
}

func (n *captureNotifier) EmitToUser(userID string, event domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[userID] = append(n.events[userID], event)
}

func (n *captureNotifier) levelUps(userID string) []domain.LevelUpEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.LevelUpEvent
	for _, event := range n.events[userID] {
		if evt, ok := event.(domain.LevelUpEvent); ok {
			out = append(out, evt)
		}
	}
	return out
}

func newTestAttemptService(notifier app.Notifier) (*app.AttemptService, *memory.NotificationStore) {
	notifications := memory.NewNotificationStore()
	svc := app.NewAttemptServiceWithClock(
		memory.NewAttemptStore(),
		memory.NewLevelStore(),
		notifications,
		notifier,
		logger.NewNop(),
		func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) },
	)
	return svc, notifications
}

func submit(t *testing.T, svc *app.AttemptService, userID string) (domain.QuizAttempt, domain.UserLevel) {
	t.Helper()
	attempt, level, err := svc.RecordAttempt(context.Background(), userID, app.AttemptInput{
		QuizID:             "quiz-1",
		Score:              2,
		TotalPossibleScore: 3,
		TimeSpentSeconds:   42,
	})
	if err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	return attempt, level
}

func TestRecordAttemptRequiresUser(t *testing.T) {
	svc, _ := newTestAttemptService(newCaptureNotifier())
	_, _, err := svc.RecordAttempt(context.Background(), "", app.AttemptInput{
		QuizID: "quiz-1", Score: 1, TotalPossibleScore: 1,
	})
	if err != domain.ErrUserRequired {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}

func TestRecordAttemptRejectsMalformedPayload(t *testing.T) {
	svc, _ := newTestAttemptService(newCaptureNotifier())
	cases := []app.AttemptInput{
		{QuizID: "", Score: 1, TotalPossibleScore: 1},
		{QuizID: "quiz-1", Score: -1, TotalPossibleScore: 1},
		{QuizID: "quiz-1", Score: 5, TotalPossibleScore: 3},
		{QuizID: "quiz-1", Score: 0, TotalPossibleScore: 0},
	}
	for _, in := range cases {
		if _, _, err := svc.RecordAttempt(context.Background(), "u1", in); err != domain.ErrInvalidAttempt {
			t.Fatalf("input %+v: expected ErrInvalidAttempt, got %v", in, err)
		}
	}
}

func TestFirstAttemptCreatesRecordWithoutLevelUp(t *testing.T) {
	notifier := newCaptureNotifier()
	svc, _ := newTestAttemptService(notifier)

	attempt, level := submit(t, svc, "u1")
	if !attempt.Completed || attempt.CompletedAt.IsZero() {
		t.Fatalf("expected completed attempt with timestamp, got %+v", attempt)
	}
	if level.Level != 1 || level.TotalQuizzesAnswered != 1 {
		t.Fatalf("expected level=1 count=1, got %+v", level)
	}
	if level.LastLevelUp != nil {
		t.Fatalf("first attempt must not set LastLevelUp")
	}
	if got := notifier.levelUps("u1"); len(got) != 0 {
		t.Fatalf("expected no levelUp events, got %+v", got)
	}
}

func TestSingleEmissionPerCrossing(t *testing.T) {
	notifier := newCaptureNotifier()
	svc, notifications := newTestAttemptService(notifier)

	// Counts 1..5 stay in level 1.
	for i := 0; i < 5; i++ {
		submit(t, svc, "u1")
	}
	if got := notifier.levelUps("u1"); len(got) != 0 {
		t.Fatalf("expected no events within level band, got %+v", got)
	}

	// Count 6 crosses into level 2: exactly one event.
	_, level := submit(t, svc, "u1")
	if level.Level != 2 || level.TotalQuizzesAnswered != 6 {
		t.Fatalf("expected level=2 count=6, got %+v", level)
	}
	if level.LastLevelUp == nil {
		t.Fatalf("expected LastLevelUp to be set on crossing")
	}
	events := notifier.levelUps("u1")
	if len(events) != 1 {
		t.Fatalf("expected exactly one levelUp event, got %d", len(events))
	}
	if events[0].PreviousLevel != 1 || events[0].NewLevel != 2 || events[0].TotalQuizzesAnswered != 6 {
		t.Fatalf("unexpected event payload: %+v", events[0])
	}

	// The crossing also persisted a level-up notification.
	notifs, err := notifications.ListNotifications(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != domain.NotificationLevelUp {
		t.Fatalf("expected one level-up notification, got %+v", notifs)
	}

	// Count 7 stays within level 2: no second event.
	submit(t, svc, "u1")
	if got := notifier.levelUps("u1"); len(got) != 1 {
		t.Fatalf("expected still one event, got %d", len(got))
	}
}

func TestLevelInvariantHoldsAcrossAttempts(t *testing.T) {
	svc, _ := newTestAttemptService(newCaptureNotifier())
	for i := 1; i <= 25; i++ {
		_, level := submit(t, svc, "u1")
		if level.TotalQuizzesAnswered != i {
			t.Fatalf("attempt %d: expected count %d, got %d", i, i, level.TotalQuizzesAnswered)
		}
		if level.Level != domain.LevelForCount(i) {
			t.Fatalf("attempt %d: level %d drifted from LevelForCount(%d)=%d",
				i, level.Level, i, domain.LevelForCount(i))
		}
	}
}

func TestClientTokenDedupesRetries(t *testing.T) {
	notifier := newCaptureNotifier()
	svc, _ := newTestAttemptService(notifier)

	in := app.AttemptInput{
		QuizID:             "quiz-1",
		Score:              1,
		TotalPossibleScore: 1,
		ClientToken:        "retry-token-1",
	}
	first, level1, err := svc.RecordAttempt(context.Background(), "u1", in)
	if err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	second, level2, err := svc.RecordAttempt(context.Background(), "u1", in)
	if err != nil {
		t.Fatalf("retried attempt: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected retry to return the stored attempt, got %s vs %s", second.ID, first.ID)
	}
	if level1.TotalQuizzesAnswered != 1 || level2.TotalQuizzesAnswered != 1 {
		t.Fatalf("retry must not double-count: %+v %+v", level1, level2)
	}
}

func TestConcurrentSubmissionsLoseNoCounts(t *testing.T) {
	svc, _ := newTestAttemptService(newCaptureNotifier())

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			submit(t, svc, "u1")
		}()
	}
	wg.Wait()

	level, err := svc.Level(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load level: %v", err)
	}
	if level.TotalQuizzesAnswered != n {
		t.Fatalf("expected count %d after concurrent submissions, got %d", n, level.TotalQuizzesAnswered)
	}
	if level.Level != domain.LevelForCount(n) {
		t.Fatalf("expected level %d, got %d", domain.LevelForCount(n), level.Level)
	}
}

func TestLevelDefaultsForUnknownUser(t *testing.T) {
	svc, _ := newTestAttemptService(newCaptureNotifier())
	level, err := svc.Level(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load level: %v", err)
	}
	if level.Level != 1 || level.TotalQuizzesAnswered != 0 {
		t.Fatalf("expected default level-1 record, got %+v", level)
	}
}

func TestHistoryReturnsNewestFirst(t *testing.T) {
	svc, _ := newTestAttemptService(newCaptureNotifier())
	first, _ := submit(t, svc, "u1")
	second, _ := submit(t, svc, "u1")

	attempts, err := svc.History(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if attempts[0].ID != second.ID || attempts[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", attempts[0].ID, attempts[1].ID)
	}
}
