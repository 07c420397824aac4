package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"quizify-service/internal/config"
	"quizify-service/internal/domain"
	pgstore "quizify-service/internal/infra/postgres"
	"quizify-service/internal/pkg/logger"
	transport "quizify-service/internal/transport/http"
)

// NewSeedCmd loads sample quizzes and a demo user, then prints a token for
// local testing.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed sample quizzes and a demo user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	quizStore := pgstore.NewQuizStore(pool)
	for _, quiz := range sampleQuizzes() {
		if err := quizStore.UpsertQuiz(ctx, quiz); err != nil {
			return err
		}
	}

	demo := domain.User{ID: "demo-user", Name: "Demo User", Email: "demo@quizify.dev", CreatedAt: time.Now()}
	if err := pgstore.NewUserStore(pool).CreateUser(ctx, demo); err != nil {
		return err
	}

	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	token, err := transport.NewTokenManager(cfg.Auth.JWTSecret, tokenTTL).Issue(demo.ID)
	if err != nil {
		return err
	}
	log.Info("seeded sample data", "quizzes", len(sampleQuizzes()), "user", demo.ID)
	fmt.Printf("demo token: %s\n", token)
	return nil
}

// sampleQuizzes provides a minimal catalog for demos and no-DB mode.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:       "quiz-1",
			Title:    "Quick Math",
			Category: "math",
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "What is 2 + 2?",
					Options: []domain.Option{
						{ID: "o1", Text: "3", Correct: false},
						{ID: "o2", Text: "4", Correct: true},
						{ID: "o3", Text: "5", Correct: false},
					},
					Points: 1,
				},
			},
		},
		"quiz-2": {
			ID:       "quiz-2",
			Title:    "World Capitals",
			Category: "geography",
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "What is the capital of Japan?",
					Options: []domain.Option{
						{ID: "o1", Text: "Kyoto", Correct: false},
						{ID: "o2", Text: "Tokyo", Correct: true},
					},
					Points: 1,
				},
				{
					ID:     "q2",
					Prompt: "What is the capital of Australia?",
					Options: []domain.Option{
						{ID: "o1", Text: "Sydney", Correct: false},
						{ID: "o2", Text: "Canberra", Correct: true},
					},
					Points: 2,
				},
			},
		},
	}
}
