package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewWhitelistHandler returns a handler for the /whitelist command, which
// manages the chat's set of users exempt from moderation.
func NewWhitelistHandler(deps HandlerDeps) bot.HandlerFunc {
	return whitelistHandler{deps}.Handle
}

type whitelistHandler struct {
	deps HandlerDeps
}

func (h whitelistHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "whitelist")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Whitelist handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /whitelist command", "chat_id", chatID, "user_id", update.Message.From.ID)

	cmd, err := parseListCommand(update.Message.Text)
	if err != nil {
		h.reply(ctx, chatID, "Usage: /whitelist add|remove|list [user_id]\n"+err.Error())
		return
	}

	var reply string
	switch cmd.verb {
	case "add":
		if err := h.deps.Store.AddWhitelist(ctx, chatID, cmd.userID); err != nil {
			log.ErrorContext(ctx, "Failed to whitelist user", "error", err, "chat_id", chatID, "target_user_id", cmd.userID)
			reply = "❌ Could not update the whitelist, the state store is unavailable."
		} else {
			reply = fmt.Sprintf("✅ User %d whitelisted. Their messages are no longer scored.", cmd.userID)
		}
	case "remove":
		if err := h.deps.Store.RemoveWhitelist(ctx, chatID, cmd.userID); err != nil {
			log.ErrorContext(ctx, "Failed to remove whitelisted user", "error", err, "chat_id", chatID, "target_user_id", cmd.userID)
			reply = "❌ Could not update the whitelist, the state store is unavailable."
		} else {
			reply = fmt.Sprintf("User %d removed from the whitelist.", cmd.userID)
		}
	case "list":
		ids, err := h.deps.Store.ListWhitelist(ctx, chatID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to list whitelisted users", "error", err, "chat_id", chatID)
			reply = "❌ Could not read the whitelist, the state store is unavailable."
		} else {
			reply = formatUserList("Whitelist", ids)
		}
	}

	h.reply(ctx, chatID, reply)
}

func (h whitelistHandler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.deps.Actions.SendMessage(ctx, chatID, text); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send whitelist reply", "error", err, "chat_id", chatID)
	}
}
