// Package jobs holds the background task definitions and the Asynq worker
// that keeps the statistics cache warm.
package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/cinedesk/cinedesk/internal/stats"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatsWarm refreshes the catalog statistics cache.
	TaskStatsWarm = "stats:warm"
)

// NewStatsWarmTask constructs the cache warm task. It carries no payload; the
// refresh always covers the whole catalog.
func NewStatsWarmTask() *asynq.Task {
	return asynq.NewTask(TaskStatsWarm, nil)
}

// StatsWarmHandler returns the handler refreshing the statistics cache.
func StatsWarmHandler(service *stats.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := service.Warm(ctx); err != nil {
			if logger != nil {
				logger.Warn("stats warm failed", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("stats cache warmed")
		}
		return nil
	}
}
