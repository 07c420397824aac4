package domain

import "errors"

var (
	// ErrUserRequired is returned when an operation needs an authenticated user.
	ErrUserRequired = errors.New("authenticated user required")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates a referenced attempt does not exist.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrNotificationNotFound indicates a referenced notification does not exist.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrTaskNotFound indicates a referenced daily task does not exist.
	ErrTaskNotFound = errors.New("daily task not found")
	// ErrInvalidAttempt is returned for malformed attempt payloads.
	ErrInvalidAttempt = errors.New("invalid quiz attempt payload")
)
