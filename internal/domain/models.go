package domain

import "time"

// User is the minimal identity referenced by attempts, levels, and notifications.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Points  int      `json:"points"` // defaults to 1 if zero
}

// Quiz is a collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Questions []Question `json:"questions"`
}

// QuizSummary is the list-view projection of a quiz.
type QuizSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	QuestionCount int    `json:"questionCount"`
}

// QuizPage is one page of the quiz catalog.
type QuizPage struct {
	Quizzes []QuizSummary `json:"quizzes"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	Total   int           `json:"total"`
}

// AttemptAnswer records the option a user picked for one question.
type AttemptAnswer struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
	Correct    bool   `json:"correct"`
}

// QuizAttempt is a finalized quiz-taking session. Immutable once stored.
type QuizAttempt struct {
	ID                 string          `json:"id"`
	QuizID             string          `json:"quizId"`
	UserID             string          `json:"userId"`
	Answers            []AttemptAnswer `json:"answers"`
	Score              int             `json:"score"`
	TotalPossibleScore int             `json:"totalPossibleScore"`
	TimeSpentSeconds   int             `json:"timeSpentSeconds"`
	ClientToken        string          `json:"clientToken,omitempty"`
	Completed          bool            `json:"completed"`
	CompletedAt        time.Time       `json:"completedAt"`
}

// UserLevel tracks a user's progression. One record per user, created lazily
// on the first completed attempt. Level and TotalQuizzesAnswered never
// decrease, and Level always equals LevelForCount(TotalQuizzesAnswered)
// after a save.
type UserLevel struct {
	UserID               string     `json:"userId"`
	Level                int        `json:"level"`
	TotalQuizzesAnswered int        `json:"totalQuizzesAnswered"`
	LastLevelUp          *time.Time `json:"lastLevelUp,omitempty"`
}

// NotificationType is the fixed set of notification categories.
type NotificationType string

const (
	NotificationLevelUp   NotificationType = "level_up"
	NotificationDailyTask NotificationType = "daily_task"
	NotificationGeneral   NotificationType = "general"
)

// Notification is a persisted message shown in the client's notification list.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// LeaderboardEntry is one row of the global scoreboard.
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Score  int64  `json:"score"`
	Rank   int64  `json:"rank"`
}

// DailyTask is one per-user task instance for a given day.
type DailyTask struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Goal        int        `json:"goal"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	AssignedOn  string     `json:"assignedOn"` // YYYY-MM-DD
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// TaskTemplate is the daily-task blueprint instantiated per user per day.
type TaskTemplate struct {
	Title       string
	Description string
	Goal        int
}
