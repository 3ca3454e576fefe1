package tasks

import (
	"context"
	"fmt"
	"time"
)

// newEventsPruneTask creates the scheduled task that deletes moderation
// events older than the configured retention and compacts the database.
func newEventsPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "events_prune")

	return func(ctx context.Context) error {
		startTime := time.Now()
		cutoff := time.Now().Add(-deps.Config.Database.EventRetention)
		log.InfoContext(ctx, "Starting moderation event prune", "cutoff", cutoff)

		pruned, err := deps.Events.PruneEventsBefore(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Event prune failed", "error", err)
			return fmt.Errorf("event prune failed: %w", err)
		}

		if err := deps.Events.RunMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Database maintenance failed", "error", err, "pruned", pruned)
			return fmt.Errorf("database maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Event prune completed", "pruned", pruned, "duration", time.Since(startTime))
		return nil
	}
}
