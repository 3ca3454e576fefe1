package database

import "time"

// ModEvent is one moderation decision taken against a message: the
// action tag (WARN, DELETE+WARN, DELETE+MUTE, DELETE+BAN, BAN), where it
// happened, who it targeted, and why.
type ModEvent struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	ChatID    int64  `db:"chat_id"`
	UserID    int64  `db:"user_id"`
	MessageID int    `db:"message_id"`
	Username  string `db:"username"`
	Action    string `db:"action"`
	Score     int    `db:"score"`
	Reasons   string `db:"reasons"`
}
