package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/castellanbot/castellan/internal/database"
	"github.com/castellanbot/castellan/internal/rules"
	"github.com/castellanbot/castellan/internal/store"
	"github.com/castellanbot/castellan/internal/text"
)

const defaultStoreTimeout = 3 * time.Second

// Message is the transport-independent view of an incoming chat message.
type Message struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Username  string
	Text      string
	Caption   string
}

// Verdict summarizes what the dispatcher did with a message.
type Verdict struct {
	// Action is the audit tag of the action taken, empty when none.
	Action string
	// Bypass names the short-circuit that skipped scoring, if any
	// (admin, whitelist, duplicate, empty).
	Bypass string
	Score  rules.Score
	// Strikes is the user's strike count after this message, when a
	// delete-tier action updated it.
	Strikes int
}

// Dispatcher evaluates messages and issues moderation actions. It is
// safe for concurrent use: the scorer is pure and the store serializes
// its own state.
type Dispatcher struct {
	log          *slog.Logger
	store        store.Store
	events       database.EventStore // optional, best-effort
	actions      Actions
	rules        *rules.Config
	storeTimeout time.Duration
}

// NewDispatcher wires the dispatcher with its capabilities. events may
// be nil when no event log is configured; storeTimeout bounds every
// state store call and falls back to a sane default when non-positive.
func NewDispatcher(
	log *slog.Logger,
	st store.Store,
	events database.EventStore,
	actions Actions,
	ruleCfg *rules.Config,
	storeTimeout time.Duration,
) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &Dispatcher{
		log:          log.With("component", "dispatcher"),
		store:        st,
		events:       events,
		actions:      actions,
		rules:        ruleCfg,
		storeTimeout: storeTimeout,
	}
}

// ProcessMessage runs the full moderation pipeline for one message:
// admin/whitelist/blacklist short-circuits, dedup suppression, scoring,
// strike escalation, action dispatch, and audit logging. Store failures
// degrade to safe defaults and transport failures never block the
// remaining steps.
func (d *Dispatcher) ProcessMessage(ctx context.Context, msg Message) Verdict {
	content := text.MessageText(msg.Text, msg.Caption)
	if content == "" {
		return Verdict{Bypass: "empty"}
	}

	log := d.log.With("chat_id", msg.ChatID, "user_id", msg.UserID, "message_id", msg.MessageID)

	// Never act on chat admins. An admin-check failure counts as "not
	// admin" so a transport hiccup cannot disable moderation.
	isAdmin, err := d.actions.IsAdmin(ctx, msg.ChatID, msg.UserID)
	if err != nil {
		log.WarnContext(ctx, "Admin check failed, treating sender as regular user", "error", err)
	}
	if isAdmin {
		messagesSkipped.WithLabelValues("admin").Inc()
		return Verdict{Bypass: "admin"}
	}

	if d.failOpenBool(ctx, log, "whitelist check", func(sc context.Context) (bool, error) {
		return d.store.IsWhitelisted(sc, msg.ChatID, msg.UserID)
	}) {
		messagesSkipped.WithLabelValues("whitelist").Inc()
		return Verdict{Bypass: "whitelist"}
	}

	// A blacklist hit short-circuits the whole policy; a store failure
	// here must never be mistaken for a hit.
	if d.failOpenBool(ctx, log, "blacklist check", func(sc context.Context) (bool, error) {
		return d.store.IsBlacklisted(sc, msg.ChatID, msg.UserID)
	}) {
		return d.banBlacklisted(ctx, log, msg)
	}

	if d.failOpenBool(ctx, log, "dedup check", func(sc context.Context) (bool, error) {
		return d.store.IsDuplicate(sc, msg.ChatID, content)
	}) {
		log.DebugContext(ctx, "Duplicate content, skipping")
		messagesSkipped.WithLabelValues("duplicate").Inc()
		return Verdict{Bypass: "duplicate"}
	}

	strict := d.failOpenBool(ctx, log, "strict mode check", func(sc context.Context) (bool, error) {
		return d.store.IsStrictMode(sc, msg.ChatID)
	})

	score := rules.Evaluate(content, strict, d.rules)
	messagesEvaluated.Inc()
	log.InfoContext(ctx, "Message scored",
		"score", score.Total, "reasons", score.Reasons,
		"warn", score.ShouldWarn, "delete", score.ShouldDelete)

	if !score.ShouldWarn && !score.ShouldDelete {
		return Verdict{Score: score}
	}

	// Claim the content before acting so delivery retries and
	// near-simultaneous duplicates cannot escalate twice. On a store
	// failure we proceed: losing dedup is the accepted fail-open mode.
	claimed, err := d.claimContent(ctx, msg.ChatID, content)
	if err != nil {
		log.WarnContext(ctx, "Dedup claim failed, proceeding without suppression", "error", err)
		storeDegraded.Inc()
	} else if !claimed {
		log.DebugContext(ctx, "Content already claimed by a concurrent evaluation")
		messagesSkipped.WithLabelValues("duplicate").Inc()
		return Verdict{Bypass: "duplicate", Score: score}
	}

	if score.ShouldDelete {
		return d.deleteAndEscalate(ctx, log, msg, score)
	}
	return d.warnOnly(ctx, log, msg, score)
}

// banBlacklisted handles the blacklist short-circuit: delete plus
// immediate ban, strike counter untouched, sentinel audit score.
func (d *Dispatcher) banBlacklisted(ctx context.Context, log *slog.Logger, msg Message) Verdict {
	log.InfoContext(ctx, "Blacklisted user posted, banning")

	if err := d.actions.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
		log.ErrorContext(ctx, "Failed to delete message from blacklisted user", "error", err)
	}
	if err := d.actions.BanUser(ctx, msg.ChatID, msg.UserID); err != nil {
		log.ErrorContext(ctx, "Failed to ban blacklisted user", "error", err)
	}

	record := AuditRecord{
		Action:   "BAN",
		ChatID:   msg.ChatID,
		UserID:   msg.UserID,
		Username: msg.Username,
		Score:    blacklistScore,
		Reasons:  "Blacklisted user",
	}
	d.actions.SendAuditLog(ctx, record)
	d.recordEvent(ctx, msg, record)
	actionsTaken.WithLabelValues("BAN").Inc()

	return Verdict{Action: "BAN"}
}

// deleteAndEscalate deletes the message, increments the strike counter,
// and acts on the new count per the escalation ladder.
func (d *Dispatcher) deleteAndEscalate(ctx context.Context, log *slog.Logger, msg Message, score rules.Score) Verdict {
	if err := d.actions.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
		// A failed delete (message already gone, missing permission)
		// does not stop the escalation.
		log.ErrorContext(ctx, "Failed to delete message", "error", err)
	}

	strikes := d.incrementStrikes(ctx, log, msg.ChatID, msg.UserID)

	tag := "DELETE"
	switch Escalate(strikes) {
	case ActionWarn:
		warning := fmt.Sprintf("⚠️ Warning %s: your message was removed.\nReason: spam detected (score: %d)\nPlease avoid posting spam or suspicious content.",
			userRef(msg.Username, msg.UserID), score.Total)
		if err := d.actions.SendMessage(ctx, msg.ChatID, warning); err != nil {
			log.ErrorContext(ctx, "Failed to send warning", "error", err)
		}
		tag = "DELETE+WARN"
	case ActionMute:
		if err := d.actions.RestrictUser(ctx, msg.ChatID, msg.UserID, MuteDuration); err != nil {
			log.ErrorContext(ctx, "Failed to mute user", "error", err)
		}
		tag = "DELETE+MUTE"
	case ActionBan:
		if err := d.actions.BanUser(ctx, msg.ChatID, msg.UserID); err != nil {
			log.ErrorContext(ctx, "Failed to ban user", "error", err)
		}
		tag = "DELETE+BAN"
	}

	record := AuditRecord{
		Action:   tag,
		ChatID:   msg.ChatID,
		UserID:   msg.UserID,
		Username: msg.Username,
		Score:    score.Total,
		Reasons:  strings.Join(score.Reasons, ", "),
	}
	d.actions.SendAuditLog(ctx, record)
	d.recordEvent(ctx, msg, record)
	actionsTaken.WithLabelValues(tag).Inc()

	return Verdict{Action: tag, Score: score, Strikes: strikes}
}

// warnOnly sends a warning without deleting; warn-tier events do not
// move the escalation ladder.
func (d *Dispatcher) warnOnly(ctx context.Context, log *slog.Logger, msg Message, score rules.Score) Verdict {
	warning := fmt.Sprintf("⚠️ Warning %s: your message was flagged.\nReason: suspicious content (score: %d)\nPlease avoid posting spam or suspicious content.",
		userRef(msg.Username, msg.UserID), score.Total)
	if err := d.actions.SendMessage(ctx, msg.ChatID, warning); err != nil {
		log.ErrorContext(ctx, "Failed to send warning", "error", err)
	}

	record := AuditRecord{
		Action:   "WARN",
		ChatID:   msg.ChatID,
		UserID:   msg.UserID,
		Username: msg.Username,
		Score:    score.Total,
		Reasons:  strings.Join(score.Reasons, ", "),
	}
	d.actions.SendAuditLog(ctx, record)
	d.recordEvent(ctx, msg, record)
	actionsTaken.WithLabelValues("WARN").Inc()

	return Verdict{Action: "WARN", Score: score}
}

// incrementStrikes bumps the strike counter. When the store is down the
// counter falls back to last-known + 1 so a first offense still warns
// instead of silently passing.
func (d *Dispatcher) incrementStrikes(ctx context.Context, log *slog.Logger, chatID, userID int64) int {
	sc, cancel := d.storeCtx(ctx)
	defer cancel()

	strikes, err := d.store.IncrementStrikes(sc, chatID, userID)
	if err == nil {
		return strikes
	}
	log.ErrorContext(ctx, "Failed to increment strikes, degrading", "error", err)
	storeDegraded.Inc()

	sc2, cancel2 := d.storeCtx(ctx)
	defer cancel2()
	prior, err := d.store.GetStrikes(sc2, chatID, userID)
	if err != nil {
		prior = 0
	}
	return prior + 1
}

func (d *Dispatcher) claimContent(ctx context.Context, chatID int64, content string) (bool, error) {
	sc, cancel := d.storeCtx(ctx)
	defer cancel()
	return d.store.MarkProcessed(sc, chatID, content)
}

// failOpenBool runs a store read with a bounded timeout and returns
// false on any failure, logging it once.
func (d *Dispatcher) failOpenBool(ctx context.Context, log *slog.Logger, op string, fn func(context.Context) (bool, error)) bool {
	sc, cancel := d.storeCtx(ctx)
	defer cancel()

	val, err := fn(sc)
	if err != nil {
		log.WarnContext(ctx, "Store unavailable, failing open", "op", op, "error", err)
		storeDegraded.Inc()
		return false
	}
	return val
}

// recordEvent persists the action to the event log, best-effort.
func (d *Dispatcher) recordEvent(ctx context.Context, msg Message, record AuditRecord) {
	if d.events == nil {
		return
	}

	event := &database.ModEvent{
		ChatID:    record.ChatID,
		UserID:    record.UserID,
		MessageID: msg.MessageID,
		Username:  record.Username,
		Action:    record.Action,
		Score:     record.Score,
		Reasons:   record.Reasons,
	}
	if err := d.events.SaveEvent(ctx, event); err != nil {
		d.log.WarnContext(ctx, "Failed to record moderation event", "error", err)
	}
}

func (d *Dispatcher) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.storeTimeout)
}

func userRef(username string, userID int64) string {
	if username != "" {
		return "@" + username
	}
	return fmt.Sprintf("user %d", userID)
}
