package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizify-service/internal/domain"
	"quizify-service/internal/pkg/logger"
)

// AttemptStore persists completed quiz attempts. Attempts are append-only;
// there is no update path.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt domain.QuizAttempt) error
	CountCompleted(ctx context.Context, userID string) (int, error)
	FindByClientToken(ctx context.Context, userID, token string) (domain.QuizAttempt, bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.QuizAttempt, error)
}

// LevelStore holds the per-user level record.
type LevelStore interface {
	GetLevel(ctx context.Context, userID string) (domain.UserLevel, bool, error)
	SaveLevel(ctx context.Context, record domain.UserLevel) error
}

// Notifier delivers events to every client currently subscribed under a
// user's identity. Delivery is fire-and-forget; implementations must not
// block the caller.
type Notifier interface {
	EmitToUser(userID string, event domain.Event)
}

// NopNotifier drops every event. Used when no real-time transport is wired.
type NopNotifier struct{}

func (NopNotifier) EmitToUser(string, domain.Event) {}

// AttemptInput is the client-submitted payload for a finished quiz.
type AttemptInput struct {
	QuizID             string                 `json:"quiz"`
	Answers            []domain.AttemptAnswer `json:"answers"`
	Score              int                    `json:"score"`
	TotalPossibleScore int                    `json:"totalPossibleScore"`
	TimeSpentSeconds   int                    `json:"timeSpent"`
	ClientToken        string                 `json:"clientToken,omitempty"`
}

// AttemptService records completed attempts and keeps the user's level record
// in sync with the derived attempt count.
type AttemptService struct {
	attempts      AttemptStore
	levels        LevelStore
	notifications NotificationStore
	notifier      Notifier
	log           *logger.Logger
	now           func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAttemptService(attempts AttemptStore, levels LevelStore, notifications NotificationStore, notifier Notifier, log *logger.Logger) *AttemptService {
	return NewAttemptServiceWithClock(attempts, levels, notifications, notifier, log, time.Now)
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(attempts AttemptStore, levels LevelStore, notifications NotificationStore, notifier Notifier, log *logger.Logger, now func() time.Time) *AttemptService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AttemptService{
		attempts:      attempts,
		levels:        levels,
		notifications: notifications,
		notifier:      notifier,
		log:           log.With("service", "attempts"),
		now:           now,
		locks:         make(map[string]*sync.Mutex),
	}
}

// RecordAttempt persists the attempt, recounts the user's completed attempts,
// recomputes the level, and on a crossing persists a level-up notification
// and emits the levelUp event. The whole read-modify-write runs under a
// per-user lock so concurrent submissions from one user cannot lose an update.
func (s *AttemptService) RecordAttempt(ctx context.Context, userID string, in AttemptInput) (domain.QuizAttempt, domain.UserLevel, error) {
	if userID == "" {
		return domain.QuizAttempt{}, domain.UserLevel{}, domain.ErrUserRequired
	}
	if in.QuizID == "" || in.Score < 0 || in.TotalPossibleScore <= 0 || in.Score > in.TotalPossibleScore {
		return domain.QuizAttempt{}, domain.UserLevel{}, domain.ErrInvalidAttempt
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	// A retried submission carrying the same client token returns the stored
	// attempt instead of double-counting it.
	if in.ClientToken != "" {
		existing, ok, err := s.attempts.FindByClientToken(ctx, userID, in.ClientToken)
		if err != nil {
			return domain.QuizAttempt{}, domain.UserLevel{}, fmt.Errorf("look up client token: %w", err)
		}
		if ok {
			record, _, err := s.levels.GetLevel(ctx, userID)
			if err != nil {
				return domain.QuizAttempt{}, domain.UserLevel{}, fmt.Errorf("load level record: %w", err)
			}
			return existing, record, nil
		}
	}

	attempt := domain.QuizAttempt{
		ID:                 uuid.NewString(),
		QuizID:             in.QuizID,
		UserID:             userID,
		Answers:            in.Answers,
		Score:              in.Score,
		TotalPossibleScore: in.TotalPossibleScore,
		TimeSpentSeconds:   in.TimeSpentSeconds,
		ClientToken:        in.ClientToken,
		Completed:          true,
		CompletedAt:        s.now(),
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return domain.QuizAttempt{}, domain.UserLevel{}, fmt.Errorf("persist attempt: %w", err)
	}

	record, found, err := s.levels.GetLevel(ctx, userID)
	if err != nil {
		return attempt, domain.UserLevel{}, fmt.Errorf("load level record: %w", err)
	}
	if !found {
		record = domain.UserLevel{UserID: userID, Level: 1}
	}

	// Derived recount rather than +1: self-healing against missed increments
	// and idempotent if the same attempt is ever processed twice.
	count, err := s.attempts.CountCompleted(ctx, userID)
	if err != nil {
		return attempt, domain.UserLevel{}, fmt.Errorf("count attempts: %w", err)
	}

	previous := record.Level
	record.TotalQuizzesAnswered = count
	record.Level = domain.LevelForCount(count)
	leveledUp := record.Level > previous
	if leveledUp {
		now := s.now()
		record.LastLevelUp = &now
	}
	if err := s.levels.SaveLevel(ctx, record); err != nil {
		// The attempt stays recorded; the stale level reconciles on the next
		// attempt because the counter is recomputed from scratch.
		return attempt, domain.UserLevel{}, fmt.Errorf("save level record: %w", err)
	}

	if leveledUp {
		s.announceLevelUp(ctx, userID, previous, record)
	}
	return attempt, record, nil
}

// Level returns the user's current level record, defaulting to a fresh
// level-1 record when none exists yet.
func (s *AttemptService) Level(ctx context.Context, userID string) (domain.UserLevel, error) {
	if userID == "" {
		return domain.UserLevel{}, domain.ErrUserRequired
	}
	record, found, err := s.levels.GetLevel(ctx, userID)
	if err != nil {
		return domain.UserLevel{}, fmt.Errorf("load level record: %w", err)
	}
	if !found {
		record = domain.UserLevel{UserID: userID, Level: 1}
	}
	return record, nil
}

// History returns the user's most recent attempts, newest first.
func (s *AttemptService) History(ctx context.Context, userID string, limit int) ([]domain.QuizAttempt, error) {
	if userID == "" {
		return nil, domain.ErrUserRequired
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.attempts.ListByUser(ctx, userID, limit)
}

func (s *AttemptService) announceLevelUp(ctx context.Context, userID string, previous int, record domain.UserLevel) {
	notif := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     "Level Up!",
		Message:   fmt.Sprintf("You reached level %d. Keep it up!", record.Level),
		Type:      domain.NotificationLevelUp,
		CreatedAt: s.now(),
	}
	if err := s.notifications.CreateNotification(ctx, notif); err != nil {
		// Best effort: the transient event still goes out.
		s.log.Warn("persist level-up notification", "user", userID, "error", err)
	} else {
		s.notifier.EmitToUser(userID, domain.NotificationCreatedEvent{Notification: notif})
	}
	s.notifier.EmitToUser(userID, domain.LevelUpEvent{
		NewLevel:             record.Level,
		PreviousLevel:        previous,
		TotalQuizzesAnswered: record.TotalQuizzesAnswered,
	})
}

func (s *AttemptService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
