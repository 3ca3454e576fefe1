// Package moderation contains the escalation policy and the dispatcher
// that orchestrates per-message evaluation: bypasses, dedup, scoring,
// strike bookkeeping, and action requests to the chat transport.
package moderation

import (
	"context"
	"time"
)

// Action is the moderation action chosen for a message.
type Action int

const (
	ActionNone Action = iota
	ActionWarn
	ActionMute
	ActionBan
)

func (a Action) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionMute:
		return "mute"
	case ActionBan:
		return "ban"
	default:
		return "none"
	}
}

// MuteDuration is the fixed restriction length applied on the second
// strike.
const MuteDuration = 24 * time.Hour

// blacklistScore is the sentinel audit score for blacklist bans, where
// no content score is computed.
const blacklistScore = 999

// Escalate maps a strike count to the action taken on a delete-worthy
// message: first strike warns, second mutes, third and beyond ban
// (the ladder saturates at ban).
func Escalate(strikes int) Action {
	switch {
	case strikes <= 0:
		return ActionNone
	case strikes == 1:
		return ActionWarn
	case strikes == 2:
		return ActionMute
	default:
		return ActionBan
	}
}

// AuditRecord is the structured entry posted to the admin log channel
// for every action taken.
type AuditRecord struct {
	Action   string
	ChatID   int64
	UserID   int64
	Username string
	Score    int
	Reasons  string
}

// Actions is the capability interface provided by the chat transport.
// Implementations deliver moderation actions; failures are reported as
// errors and the dispatcher logs them without retrying.
type Actions interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendMessage(ctx context.Context, chatID int64, text string) error
	// RestrictUser applies a full restriction (no partial permissions)
	// for the given duration.
	RestrictUser(ctx context.Context, chatID, userID int64, duration time.Duration) error
	BanUser(ctx context.Context, chatID, userID int64) error
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
	// SendAuditLog is best-effort; implementations log failures and
	// never surface them.
	SendAuditLog(ctx context.Context, record AuditRecord)
}
