package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/castellanbot/castellan/internal/moderation"
)

// adminCacheTTL bounds how long a chat member's admin status is reused
// before asking the API again.
const adminCacheTTL = 5 * time.Minute

type adminCacheEntry struct {
	isAdmin   bool
	expiresAt time.Time
}

// ChatActions implements moderation.Actions against the Telegram Bot API.
// Admin lookups are cached briefly since Telegram rate-limits getChatMember
// and admin status rarely changes mid-conversation.
type ChatActions struct {
	bot         *bot.Bot
	log         *slog.Logger
	auditChatID int64

	mu         sync.Mutex
	adminCache map[string]adminCacheEntry
}

// NewChatActions creates the Telegram-backed action executor. A zero
// auditChatID disables audit log posting. Bind must be called with the bot
// instance before any update is processed; the bot itself is constructed
// later because its default handler depends on these actions.
func NewChatActions(logger *slog.Logger, auditChatID int64) *ChatActions {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatActions{
		log:         logger.With("component", "chat_actions"),
		auditChatID: auditChatID,
		adminCache:  make(map[string]adminCacheEntry),
	}
}

// Bind attaches the bot instance the actions execute against.
func (a *ChatActions) Bind(b *bot.Bot) {
	a.bot = b
}

// DeleteMessage removes a message from a chat.
func (a *ChatActions) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := a.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

// SendMessage posts a plain text message to a chat.
func (a *ChatActions) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := a.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// RestrictUser mutes a user in a chat for the given duration by revoking
// all message permissions.
func (a *ChatActions) RestrictUser(ctx context.Context, chatID, userID int64, duration time.Duration) error {
	until := time.Now().Add(duration).Unix()
	_, err := a.bot.RestrictChatMember(ctx, &bot.RestrictChatMemberParams{
		ChatID:      chatID,
		UserID:      userID,
		Permissions: &models.ChatPermissions{},
		UntilDate:   int(until),
	})
	if err != nil {
		return fmt.Errorf("failed to restrict user %d in chat %d: %w", userID, chatID, err)
	}
	return nil
}

// BanUser permanently bans a user from a chat.
func (a *ChatActions) BanUser(ctx context.Context, chatID, userID int64) error {
	_, err := a.bot.BanChatMember(ctx, &bot.BanChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return fmt.Errorf("failed to ban user %d in chat %d: %w", userID, chatID, err)
	}
	return nil
}

// IsAdmin reports whether the user is the chat owner or an administrator.
func (a *ChatActions) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	key := fmt.Sprintf("%d:%d", chatID, userID)

	a.mu.Lock()
	entry, ok := a.adminCache[key]
	a.mu.Unlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.isAdmin, nil
	}

	member, err := a.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member %d in chat %d: %w", userID, chatID, err)
	}

	isAdmin := member.Type == models.ChatMemberTypeOwner || member.Type == models.ChatMemberTypeAdministrator

	a.mu.Lock()
	a.adminCache[key] = adminCacheEntry{isAdmin: isAdmin, expiresAt: time.Now().Add(adminCacheTTL)}
	a.mu.Unlock()

	return isAdmin, nil
}

// SendAuditLog posts a moderation record to the configured audit chat.
// Failures are logged and swallowed so auditing never blocks enforcement.
func (a *ChatActions) SendAuditLog(ctx context.Context, record moderation.AuditRecord) {
	if a.auditChatID == 0 {
		return
	}

	who := record.Username
	if who == "" {
		who = fmt.Sprintf("id %d", record.UserID)
	}
	text := fmt.Sprintf("🛡 %s\nChat: %d\nUser: %s\nScore: %d\nReasons: %s",
		record.Action, record.ChatID, who, record.Score, record.Reasons)

	_, err := a.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: a.auditChatID,
		Text:   text,
	})
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to post audit log message", "error", err, "action", record.Action)
	}
}
