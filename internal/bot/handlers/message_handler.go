package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/castellanbot/castellan/internal/moderation"
)

// NewMessageHandler returns the default handler that feeds every group
// message through the moderation dispatcher. Edited messages are re-checked
// since spammers commonly edit innocuous messages into spam.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil || msg.From == nil {
		return
	}

	// Moderation applies to group chats only.
	if msg.Chat.Type != models.ChatTypeGroup && msg.Chat.Type != models.ChatTypeSupergroup {
		return
	}
	if msg.From.IsBot {
		return
	}

	verdict := h.deps.Dispatcher.ProcessMessage(ctx, moderation.Message{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		MessageID: msg.ID,
		Username:  msg.From.Username,
		Text:      msg.Text,
		Caption:   msg.Caption,
	})

	if verdict.Action != "" {
		h.deps.Logger.InfoContext(ctx, "Moderation action taken",
			"chat_id", msg.Chat.ID,
			"user_id", msg.From.ID,
			"action", verdict.Action,
			"score", verdict.Score.Total,
			"strikes", verdict.Strikes,
		)
	}
}
