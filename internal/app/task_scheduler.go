package app

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"quizify-service/internal/pkg/logger"
)

// StartTaskScheduler runs the daily-task expiry job on an interval. The
// returned scheduler should be shut down with the server.
func StartTaskScheduler(svc *DailyTaskService, interval time.Duration, log *logger.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := svc.ExpireOldTasks(ctx); err != nil {
				log.Warn("expire daily tasks", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	sched.Start()
	return sched, nil
}
