package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewUnstrikeHandler returns a handler for the /unstrike command, which
// clears a user's strike counter in the current chat.
func NewUnstrikeHandler(deps HandlerDeps) bot.HandlerFunc {
	return unstrikeHandler{deps}.Handle
}

type unstrikeHandler struct {
	deps HandlerDeps
}

func (h unstrikeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "unstrike")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Unstrike handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /unstrike command", "chat_id", chatID, "user_id", update.Message.From.ID)

	fields := strings.Fields(update.Message.Text)
	if len(fields) < 2 {
		h.reply(ctx, chatID, "Usage: /unstrike <user_id>")
		return
	}
	userID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || userID <= 0 {
		h.reply(ctx, chatID, fmt.Sprintf("Invalid user id %q.", fields[1]))
		return
	}

	if err := h.deps.Store.ResetStrikes(ctx, chatID, userID); err != nil {
		log.ErrorContext(ctx, "Failed to reset strikes", "error", err, "chat_id", chatID, "target_user_id", userID)
		h.reply(ctx, chatID, "❌ Could not reset strikes, the state store is unavailable.")
		return
	}

	log.InfoContext(ctx, "Strikes reset", "chat_id", chatID, "target_user_id", userID)
	h.reply(ctx, chatID, fmt.Sprintf("✅ Strikes cleared for user %d.", userID))
}

func (h unstrikeHandler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.deps.Actions.SendMessage(ctx, chatID, text); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send unstrike reply", "error", err, "chat_id", chatID)
	}
}
