package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewBlacklistHandler returns a handler for the /blacklist command, which
// manages the chat's set of users banned on sight.
func NewBlacklistHandler(deps HandlerDeps) bot.HandlerFunc {
	return blacklistHandler{deps}.Handle
}

type blacklistHandler struct {
	deps HandlerDeps
}

func (h blacklistHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "blacklist")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Blacklist handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /blacklist command", "chat_id", chatID, "user_id", update.Message.From.ID)

	cmd, err := parseListCommand(update.Message.Text)
	if err != nil {
		h.reply(ctx, chatID, "Usage: /blacklist add|remove|list [user_id]\n"+err.Error())
		return
	}

	var reply string
	switch cmd.verb {
	case "add":
		if err := h.deps.Store.AddBlacklist(ctx, chatID, cmd.userID); err != nil {
			log.ErrorContext(ctx, "Failed to blacklist user", "error", err, "chat_id", chatID, "target_user_id", cmd.userID)
			reply = "❌ Could not update the blacklist, the state store is unavailable."
		} else {
			reply = fmt.Sprintf("⛔ User %d blacklisted. Their next message gets them banned.", cmd.userID)
		}
	case "remove":
		if err := h.deps.Store.RemoveBlacklist(ctx, chatID, cmd.userID); err != nil {
			log.ErrorContext(ctx, "Failed to remove blacklisted user", "error", err, "chat_id", chatID, "target_user_id", cmd.userID)
			reply = "❌ Could not update the blacklist, the state store is unavailable."
		} else {
			reply = fmt.Sprintf("User %d removed from the blacklist.", cmd.userID)
		}
	case "list":
		ids, err := h.deps.Store.ListBlacklist(ctx, chatID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to list blacklisted users", "error", err, "chat_id", chatID)
			reply = "❌ Could not read the blacklist, the state store is unavailable."
		} else {
			reply = formatUserList("Blacklist", ids)
		}
	}

	h.reply(ctx, chatID, reply)
}

func (h blacklistHandler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.deps.Actions.SendMessage(ctx, chatID, text); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send blacklist reply", "error", err, "chat_id", chatID)
	}
}
