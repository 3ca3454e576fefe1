package handlers

import (
	"log/slog"

	"github.com/castellanbot/castellan/internal/config"
	"github.com/castellanbot/castellan/internal/database"
	"github.com/castellanbot/castellan/internal/moderation"
	"github.com/castellanbot/castellan/internal/store"
)

// HandlerDeps provides dependencies for Telegram command and message handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      store.Store
	Events     database.EventStore
	Actions    moderation.Actions
	Dispatcher *moderation.Dispatcher
}
