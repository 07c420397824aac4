package app

import (
	"context"

	"quizify-service/internal/domain"
)

// QuizRepository loads quiz content, typically through a cache layer.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCatalog lists the quiz catalog straight from the backing store.
type QuizCatalog interface {
	ListQuizzes(ctx context.Context, page, limit int) (domain.QuizPage, error)
}

// QuizService exposes quiz catalog reads.
type QuizService struct {
	quizzes QuizRepository
	catalog QuizCatalog
}

func NewQuizService(quizzes QuizRepository, catalog QuizCatalog) *QuizService {
	return &QuizService{quizzes: quizzes, catalog: catalog}
}

// Get fetches one quiz by ID through the cache.
func (s *QuizService) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quizID == "" {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.quizzes.GetQuiz(ctx, quizID)
}

// List returns one catalog page. Page starts at 1; limit defaults to 20 and
// caps at 50.
func (s *QuizService) List(ctx context.Context, page, limit int) (domain.QuizPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	return s.catalog.ListQuizzes(ctx, page, limit)
}
