package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const statusRecentLimit = 5

// NewStatusHandler returns a handler for the /status command. It reports the
// chat's strict mode, list sizes, and recent moderation activity.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Status handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /status command", "chat_id", chatID, "user_id", update.Message.From.ID)

	var sb strings.Builder
	sb.WriteString("🛡 Castellan status\n\n")

	strict, err := h.deps.Store.IsStrictMode(ctx, chatID)
	if err != nil {
		log.WarnContext(ctx, "Failed to read strict mode", "error", err, "chat_id", chatID)
		sb.WriteString("Strict mode: unknown (store unavailable)\n")
	} else if strict {
		sb.WriteString("Strict mode: ON\n")
	} else {
		sb.WriteString("Strict mode: off\n")
	}

	if whitelist, err := h.deps.Store.ListWhitelist(ctx, chatID); err == nil {
		fmt.Fprintf(&sb, "Whitelisted users: %d\n", len(whitelist))
	}
	if blacklist, err := h.deps.Store.ListBlacklist(ctx, chatID); err == nil {
		fmt.Fprintf(&sb, "Blacklisted users: %d\n", len(blacklist))
	}

	if h.deps.Events != nil {
		total, err := h.deps.Events.CountEvents(ctx, chatID)
		if err != nil {
			log.WarnContext(ctx, "Failed to count moderation events", "error", err, "chat_id", chatID)
		} else {
			fmt.Fprintf(&sb, "Recorded actions: %d\n", total)
		}

		recent, err := h.deps.Events.RecentEvents(ctx, chatID, statusRecentLimit)
		if err != nil {
			log.WarnContext(ctx, "Failed to load recent moderation events", "error", err, "chat_id", chatID)
		} else if len(recent) > 0 {
			sb.WriteString("\nRecent actions:\n")
			for _, ev := range recent {
				who := ev.Username
				if who == "" {
					who = fmt.Sprintf("id %d", ev.UserID)
				}
				fmt.Fprintf(&sb, "• %s %s (score %d, %s)\n",
					ev.CreatedAt.Format(time.DateTime), ev.Action, ev.Score, who)
			}
		}
	}

	if err := h.deps.Actions.SendMessage(ctx, chatID, sb.String()); err != nil {
		log.ErrorContext(ctx, "Failed to send status message", "error", err, "chat_id", chatID)
	}
}
