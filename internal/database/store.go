package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// EventStore is the data access layer for the moderation event log.
type EventStore interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveEvent inserts a new moderation event record.
	SaveEvent(ctx context.Context, event *ModEvent) error

	// RecentEvents retrieves the most recent 'limit' events for a chat,
	// newest first.
	RecentEvents(ctx context.Context, chatID int64, limit int) ([]ModEvent, error)

	// CountEvents returns the number of recorded events for a chat.
	CountEvents(ctx context.Context, chatID int64) (int, error)

	// PruneEventsBefore deletes events created before cutoff and
	// returns how many were removed.
	PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunMaintenance performs database maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewEventStore creates an EventStore backed by sqlx.
func NewEventStore(db *sqlx.DB, logger *slog.Logger) EventStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "event_store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveEvent(ctx context.Context, event *ModEvent) error {
	if event == nil {
		return fmt.Errorf("cannot save nil event")
	}
	if event.ChatID == 0 || event.UserID == 0 {
		return fmt.Errorf("event must have non-zero chat_id and user_id")
	}
	if event.Action == "" {
		return fmt.Errorf("event must have an action")
	}

	event.CreatedAt = time.Now().UTC()

	query := `INSERT INTO mod_events
		(created_at, chat_id, user_id, message_id, username, action, score, reasons)
		VALUES (:created_at, :chat_id, :user_id, :message_id, :username, :action, :score, :reasons)`

	if _, err := s.db.NamedExecContext(ctx, query, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save moderation event",
			"chat_id", event.ChatID, "user_id", event.UserID, "action", event.Action, "error", err)
		return fmt.Errorf("failed to save moderation event: %w", err)
	}
	return nil
}

func (s *sqlxStore) RecentEvents(ctx context.Context, chatID int64, limit int) ([]ModEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	var events []ModEvent
	query := `SELECT id, created_at, chat_id, user_id, message_id, username, action, score, reasons
		FROM mod_events WHERE chat_id = ? ORDER BY id DESC LIMIT ?`

	if err := s.db.SelectContext(ctx, &events, query, chatID, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	return events, nil
}

func (s *sqlxStore) CountEvents(ctx context.Context, chatID int64) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM mod_events WHERE chat_id = ?`, chatID); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM mod_events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}

	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	if pruned > 0 {
		s.logger.InfoContext(ctx, "Pruned old moderation events", "count", pruned, "cutoff", cutoff)
	}
	return pruned, nil
}

func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
