// Package store provides the TTL-aware state store backing moderation:
// per-(chat,user) strike counters, content dedup markers, per-chat strict
// mode, and whitelist/blacklist sets. Backends: redis and in-memory.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/castellanbot/castellan/internal/text"
)

// TTLs. A strike increment resets the full window (hard TTL reset, not a
// sliding average).
const (
	StrikeTTL = 7 * 24 * time.Hour
	DedupTTL  = time.Hour
)

// Store is the capability interface for moderation state. Every method
// returns an explicit error so callers can tell "genuinely false" from
// "store unavailable"; callers are expected to fail open on errors
// (strikes 0, not duplicate, not strict, not listed) because moderation
// must continue through a store outage.
type Store interface {
	// GetStrikes returns the current strike count for a user in a chat.
	GetStrikes(ctx context.Context, chatID, userID int64) (int, error)
	// IncrementStrikes adds one strike, resets the TTL window, and
	// returns the new count. The backend serializes concurrent
	// increments.
	IncrementStrikes(ctx context.Context, chatID, userID int64) (int, error)
	// ResetStrikes clears a user's strikes in a chat.
	ResetStrikes(ctx context.Context, chatID, userID int64) error

	// IsDuplicate reports whether this content was recently processed
	// in the chat.
	IsDuplicate(ctx context.Context, chatID int64, msg string) (bool, error)
	// MarkProcessed claims the content for the dedup window. It returns
	// true when this call created the marker; false means another
	// evaluation already claimed identical content, so two concurrent
	// duplicates can never both pass.
	MarkProcessed(ctx context.Context, chatID int64, msg string) (bool, error)

	IsStrictMode(ctx context.Context, chatID int64) (bool, error)
	// ToggleStrictMode flips the chat's strict flag and returns the new
	// state.
	ToggleStrictMode(ctx context.Context, chatID int64) (bool, error)

	IsWhitelisted(ctx context.Context, chatID, userID int64) (bool, error)
	AddWhitelist(ctx context.Context, chatID, userID int64) error
	RemoveWhitelist(ctx context.Context, chatID, userID int64) error
	ListWhitelist(ctx context.Context, chatID int64) ([]int64, error)

	IsBlacklisted(ctx context.Context, chatID, userID int64) (bool, error)
	AddBlacklist(ctx context.Context, chatID, userID int64) error
	RemoveBlacklist(ctx context.Context, chatID, userID int64) error
	ListBlacklist(ctx context.Context, chatID int64) ([]int64, error)

	// Healthy probes the backing store.
	Healthy(ctx context.Context) error
	Close() error
}

func strikeKey(chatID, userID int64) string {
	return fmt.Sprintf("strikes:%d:%d", chatID, userID)
}

func dedupKey(chatID int64, contentHash string) string {
	return fmt.Sprintf("dedup:%d:%s", chatID, contentHash)
}

func strictKey(chatID int64) string {
	return fmt.Sprintf("strict:%d", chatID)
}

func whitelistKey(chatID int64) string {
	return fmt.Sprintf("whitelist:%d", chatID)
}

func blacklistKey(chatID int64) string {
	return fmt.Sprintf("blacklist:%d", chatID)
}

// hashContent produces the short content hash used in dedup keys:
// sha256 of the normalized text, truncated to 16 hex characters.
func hashContent(msg string) string {
	sum := sha256.Sum256([]byte(text.Normalize(msg)))
	return hex.EncodeToString(sum[:])[:16]
}
