package memory

import (
	"context"
	"sort"
	"sync"

	"quizify-service/internal/domain"
)

// QuizStore holds quiz content in memory. It doubles as the catalog and as a
// loader for the cache layers (useful for tests/demos and no-DB mode).
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizStore(quizzes map[string]domain.Quiz) *QuizStore {
	if quizzes == nil {
		quizzes = make(map[string]domain.Quiz)
	}
	return &QuizStore{quizzes: quizzes}
}

func (s *QuizStore) AddQuiz(quiz domain.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
}

func (s *QuizStore) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if quiz, ok := s.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) ListQuizzes(_ context.Context, page, limit int) (domain.QuizPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]domain.QuizSummary, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		summaries = append(summaries, domain.QuizSummary{
			ID:            quiz.ID,
			Title:         quiz.Title,
			Category:      quiz.Category,
			QuestionCount: len(quiz.Questions),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	total := len(summaries)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return domain.QuizPage{
		Quizzes: summaries[start:end],
		Page:    page,
		Limit:   limit,
		Total:   total,
	}, nil
}
