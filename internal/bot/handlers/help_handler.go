package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpMsg = `Castellan commands (admin only unless noted):

/status — chat moderation status and recent activity (anyone)
/strict — toggle strict scoring mode for this chat
/whitelist add|remove|list [user_id] — manage trusted users
/blacklist add|remove|list [user_id] — manage banned-on-sight users
/unstrike <user_id> — clear a user's strike counter
/help — this message (anyone)`

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Help handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /help command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	if err := h.deps.Actions.SendMessage(ctx, update.Message.Chat.ID, helpMsg); err != nil {
		log.ErrorContext(ctx, "Failed to send help message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
