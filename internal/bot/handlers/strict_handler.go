package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStrictHandler returns a handler for the /strict command, which toggles
// strict scoring mode for the current chat.
func NewStrictHandler(deps HandlerDeps) bot.HandlerFunc {
	return strictHandler{deps}.Handle
}

type strictHandler struct {
	deps HandlerDeps
}

func (h strictHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "strict")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Strict handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /strict command", "chat_id", chatID, "user_id", update.Message.From.ID)

	enabled, err := h.deps.Store.ToggleStrictMode(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to toggle strict mode", "error", err, "chat_id", chatID)
		h.reply(ctx, log, chatID, "❌ Could not toggle strict mode, the state store is unavailable.")
		return
	}

	if enabled {
		h.reply(ctx, log, chatID, "🔒 Strict mode enabled. Borderline messages now score one point higher.")
	} else {
		h.reply(ctx, log, chatID, "🔓 Strict mode disabled.")
	}
}

func (h strictHandler) reply(ctx context.Context, log *slog.Logger, chatID int64, text string) {
	if err := h.deps.Actions.SendMessage(ctx, chatID, text); err != nil {
		log.ErrorContext(ctx, "Failed to send strict mode reply", "error", err, "chat_id", chatID)
	}
}
