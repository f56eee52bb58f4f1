package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDraftSweep is the task type for pruning stale draft snapshots.
	TaskDraftSweep = "draft:sweep"
)

// NewDraftSweepTask constructs an Asynq task.
func NewDraftSweepTask() *asynq.Task {
	return asynq.NewTask(TaskDraftSweep, nil)
}

// SnapshotSweeper removes draft snapshots untouched for longer than maxIdle.
type SnapshotSweeper interface {
	SweepStale(ctx context.Context, maxIdle time.Duration) (int64, error)
}

// NewDraftSweepHandler returns the handler processing TaskDraftSweep tasks.
func NewDraftSweepHandler(sweeper SnapshotSweeper, maxIdle time.Duration, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		removed, err := sweeper.SweepStale(ctx, maxIdle)
		if err != nil {
			logger.Error("draft sweep failed", slog.Any("error", err))
			return err
		}
		if removed > 0 {
			logger.Info("stale drafts swept", slog.Int64("removed", removed))
		}
		return nil
	}
}
