package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizify-service/internal/app"
	"quizify-service/internal/config"
	"quizify-service/internal/infra/memory"
	pgstore "quizify-service/internal/infra/postgres"
	redisinfra "quizify-service/internal/infra/redis"
	"quizify-service/internal/pkg/logger"
	transport "quizify-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quizify server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Stores: postgres when configured, in-memory otherwise.
	var (
		attemptStore      app.AttemptStore
		levelStore        app.LevelStore
		notificationStore app.NotificationStore
		taskStore         app.TaskStore
		userStore         app.UserStore
		quizLoader        memory.QuizLoader
		quizCatalog       app.QuizCatalog
	)
	if pool != nil {
		attemptStore = pgstore.NewAttemptStore(pool)
		levelStore = pgstore.NewLevelStore(pool)
		notificationStore = pgstore.NewNotificationStore(pool)
		taskStore = pgstore.NewTaskStore(pool)
		userStore = pgstore.NewUserStore(pool)
		quizStore := pgstore.NewQuizStore(pool)
		quizLoader = quizStore
		quizCatalog = quizStore
	} else {
		attemptStore = memory.NewAttemptStore()
		levelStore = memory.NewLevelStore()
		notificationStore = memory.NewNotificationStore()
		taskStore = memory.NewTaskStore()
		userStore = memory.NewUserStore()
		quizStore := memory.NewQuizStore(sampleQuizzes())
		quizLoader = quizStore
		quizCatalog = quizStore
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizCache(redisClient, quizLoader, quizTTL)
	} else {
		quizRepo = memory.NewQuizCache(quizLoader, quizTTL)
	}

	var presence transport.PresenceMarker
	if redisClient != nil {
		presence = redisinfra.NewPresence(redisClient, redisTTL)
	}
	hub := transport.NewHub(presence, log)

	var scoreStore app.ScoreStore
	if redisClient != nil {
		scoreStore = redisinfra.NewLeaderboard(redisClient)
	} else {
		scoreStore = memory.NewScoreStore()
	}

	attemptSvc := app.NewAttemptService(attemptStore, levelStore, notificationStore, hub, log)
	notificationSvc := app.NewNotificationService(notificationStore, hub, log)
	quizSvc := app.NewQuizService(quizRepo, quizCatalog)
	leaderboardSvc := app.NewLeaderboardService(scoreStore, log)
	taskSvc := app.NewDailyTaskService(taskStore, notificationStore, hub, log)
	userSvc := app.NewUserService(userStore)

	resetInterval := config.TTLDuration(cfg.Tasks.ResetInterval, time.Hour)
	sched, err := app.StartTaskScheduler(taskSvc, resetInterval, log)
	if err != nil {
		return err
	}
	defer func() { _ = sched.Shutdown() }()

	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	tokens := transport.NewTokenManager(cfg.Auth.JWTSecret, tokenTTL)
	wsHandler := transport.NewWSHandler(tokens, hub, notificationSvc, log)
	apiHandler := transport.NewAPIHandler(attemptSvc, quizSvc, notificationSvc, leaderboardSvc, taskSvc, userSvc, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      tokens.Middleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quizify service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
