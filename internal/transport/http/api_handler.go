package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quizify-service/internal/app"
	"quizify-service/internal/domain"
	"quizify-service/internal/pkg/logger"
)

// APIHandler serves the REST surface.
type APIHandler struct {
	attempts      *app.AttemptService
	quizzes       *app.QuizService
	notifications *app.NotificationService
	leaderboard   *app.LeaderboardService
	tasks         *app.DailyTaskService
	users         *app.UserService
	log           *logger.Logger
}

func NewAPIHandler(
	attempts *app.AttemptService,
	quizzes *app.QuizService,
	notifications *app.NotificationService,
	leaderboard *app.LeaderboardService,
	tasks *app.DailyTaskService,
	users *app.UserService,
	log *logger.Logger,
) *APIHandler {
	return &APIHandler{
		attempts:      attempts,
		quizzes:       quizzes,
		notifications: notifications,
		leaderboard:   leaderboard,
		tasks:         tasks,
		users:         users,
		log:           log.With("component", "api"),
	}
}

// Register wires every route onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/quiz-attempts", h.submitAttempt)
	mux.HandleFunc("GET /api/v1/quiz-attempts", h.attemptHistory)
	mux.HandleFunc("GET /api/v1/quizzes", h.listQuizzes)
	mux.HandleFunc("GET /api/v1/quizzes/{id}", h.getQuiz)
	mux.HandleFunc("GET /api/v1/users/me", h.me)
	mux.HandleFunc("GET /api/v1/users/me/level", h.myLevel)
	mux.HandleFunc("GET /api/v1/notifications", h.listNotifications)
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", h.readNotification)
	mux.HandleFunc("DELETE /api/v1/notifications/{id}", h.deleteNotification)
	mux.HandleFunc("DELETE /api/v1/notifications", h.deleteAllNotifications)
	mux.HandleFunc("GET /api/v1/leaderboard", h.topScores)
	mux.HandleFunc("GET /api/v1/daily-tasks", h.dailyTasks)
	mux.HandleFunc("POST /api/v1/daily-tasks/{id}/complete", h.completeTask)
}

type submitAttemptResponse struct {
	QuizAttempt domain.QuizAttempt `json:"quizAttempt"`
	UserLevel   domain.UserLevel   `json:"userLevel"`
}

func (h *APIHandler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "authenticated user required")
		return
	}
	var in app.AttemptInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	attempt, level, err := h.attempts.RecordAttempt(r.Context(), userID, in)
	switch {
	case errors.Is(err, domain.ErrInvalidAttempt):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error("record attempt", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record attempt")
		return
	}

	// Scoreboard and task progress ride along best-effort; neither can fail
	// the submission.
	h.leaderboard.RecordScore(r.Context(), userID, attempt.Score)
	h.tasks.RecordQuizCompletion(r.Context(), userID, attempt.Score == attempt.TotalPossibleScore)

	writeJSON(w, http.StatusCreated, submitAttemptResponse{QuizAttempt: attempt, UserLevel: level})
}

func (h *APIHandler) attemptHistory(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "authenticated user required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	attempts, err := h.attempts.History(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("attempt history", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load attempts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizAttempts": attempts})
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	result, err := h.quizzes.List(r.Context(), page, limit)
	if err != nil {
		h.log.Error("list quizzes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list quizzes")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Get(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	case err != nil:
		h.log.Error("get quiz", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load quiz")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *APIHandler) me(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "authenticated user required")
		return
	}
	user, err := h.users.Get(r.Context(), userID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
		return
	case err != nil:
		h.log.Error("load user", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) myLevel(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "authenticated user required")
		return
	}
	record, err := h.attempts.Level(r.Context(), userID)
	if err != nil {
		h.log.Error("load level", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load level")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *APIHandler) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "authenticated user required")
		return
	}
	notifs, err := h.notifications.List(r.Context(), userID)
	if err != nil {
		h.log.Error("list notifications", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifs})
}

func (h *APIHandler) readNotification(w http.ResponseWriter, r *http.Request) {
	h.mutateNotification(w, r, func(userID, id string) error {
		return h.notifications.MarkRead(r.Context(), userID, id)
	})
}

func (h *APIHandler) deleteNotification(w http.ResponseWriter, r *http.Request) {
	h.mutateNotification(w, r, func(userID, id string) error {
		return h.notifications.Delete(r.Context(), userID, id)
	})
}

func (h *APIHandler) mutateNotification(w http.ResponseWriter, r *http.Request, op func(userID, id string) error) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "authenticated user required")
		return
	}
	err := op(userID, r.PathValue("id"))
	switch {
	case errors.Is(err, domain.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, "notification not found")
	case err != nil:
		h.log.Error("mutate notification", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update notification")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *APIHandler) deleteAllNotifications(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "authenticated user required")
		return
	}
	if err := h.notifications.DeleteAll(r.Context(), userID); err != nil {
		h.log.Error("delete notifications", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete notifications")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) topScores(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		h.log.Error("load leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *APIHandler) dailyTasks(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "authenticated user required")
		return
	}
	tasks, err := h.tasks.TasksForToday(r.Context(), userID)
	if err != nil {
		h.log.Error("load daily tasks", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load daily tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *APIHandler) completeTask(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusBadRequest, "authenticated user required")
		return
	}
	task, err := h.tasks.Complete(r.Context(), userID, r.PathValue("id"))
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "daily task not found")
		return
	case err != nil:
		h.log.Error("complete task", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
