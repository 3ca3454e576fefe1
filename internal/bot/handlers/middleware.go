// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const notAuthorizedMsg = "🚫 This command is restricted to chat administrators."

// ChatAdminOnly creates a middleware that checks if the message sender is an
// owner or administrator of the chat the command was issued in. If not, it
// replies with a refusal and stops processing.
func ChatAdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}

			chatID := update.Message.Chat.ID
			userID := update.Message.From.ID
			log := deps.Logger.With("middleware", "ChatAdminOnly")

			isAdmin, err := deps.Actions.IsAdmin(ctx, chatID, userID)
			if err != nil {
				log.ErrorContext(ctx, "Admin check failed, refusing command", "error", err, "chat_id", chatID, "user_id", userID)
			}
			if !isAdmin {
				log.WarnContext(ctx, "Unauthorized command attempt", "chat_id", chatID, "user_id", userID)
				if sendErr := deps.Actions.SendMessage(ctx, chatID, notAuthorizedMsg); sendErr != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", sendErr, "chat_id", chatID)
				}
				return
			}

			next(ctx, bot, update)
		}
	}
}
