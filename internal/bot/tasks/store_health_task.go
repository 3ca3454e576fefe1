package tasks

import (
	"context"
	"fmt"
	"time"
)

const healthCheckTimeout = 5 * time.Second

// newStoreHealthTask creates the scheduled task that probes the state store
// and the event database. A failing store means moderation is running
// degraded (every message treated as a first offense), which is worth
// surfacing before users notice.
func newStoreHealthTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "store_health")

	return func(ctx context.Context) error {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()

		if err := deps.Store.Healthy(checkCtx); err != nil {
			log.ErrorContext(ctx, "State store unhealthy, moderation running degraded", "error", err)
			return fmt.Errorf("state store unhealthy: %w", err)
		}

		if deps.Events != nil {
			if err := deps.Events.Ping(checkCtx); err != nil {
				log.ErrorContext(ctx, "Event database unhealthy, audit records will be lost", "error", err)
				return fmt.Errorf("event database unhealthy: %w", err)
			}
		}

		log.DebugContext(ctx, "Health check passed")
		return nil
	}
}
