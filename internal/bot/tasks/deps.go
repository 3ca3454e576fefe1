// Package tasks implements scheduled maintenance tasks for Castellan.
package tasks

import (
	"log/slog"

	"github.com/castellanbot/castellan/internal/config"
	"github.com/castellanbot/castellan/internal/database"
	"github.com/castellanbot/castellan/internal/store"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  store.Store
	Events database.EventStore
}
