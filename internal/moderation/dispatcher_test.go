package moderation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellanbot/castellan/internal/moderation"
	"github.com/castellanbot/castellan/internal/rules"
	"github.com/castellanbot/castellan/internal/store"
)

// fakeActions records every action request made by the dispatcher.
type fakeActions struct {
	mu sync.Mutex

	admins map[int64]bool

	deleted    []int
	sent       []string
	restricted []time.Duration
	banned     []int64
	audits     []moderation.AuditRecord
}

func newFakeActions() *fakeActions {
	return &fakeActions{admins: make(map[int64]bool)}
}

func (f *fakeActions) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeActions) SendMessage(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeActions) RestrictUser(_ context.Context, _, _ int64, duration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restricted = append(f.restricted, duration)
	return nil
}

func (f *fakeActions) BanUser(_ context.Context, _, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeActions) IsAdmin(_ context.Context, _, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admins[userID], nil
}

func (f *fakeActions) SendAuditLog(_ context.Context, record moderation.AuditRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, record)
}

// failingStore simulates a total store outage.
type failingStore struct{}

var errStoreDown = errors.New("store unreachable")

func (failingStore) GetStrikes(context.Context, int64, int64) (int, error) {
	return 0, errStoreDown
}
func (failingStore) IncrementStrikes(context.Context, int64, int64) (int, error) {
	return 0, errStoreDown
}
func (failingStore) ResetStrikes(context.Context, int64, int64) error { return errStoreDown }
func (failingStore) IsDuplicate(context.Context, int64, string) (bool, error) {
	return false, errStoreDown
}
func (failingStore) MarkProcessed(context.Context, int64, string) (bool, error) {
	return false, errStoreDown
}
func (failingStore) IsStrictMode(context.Context, int64) (bool, error) { return false, errStoreDown }
func (failingStore) ToggleStrictMode(context.Context, int64) (bool, error) {
	return false, errStoreDown
}
func (failingStore) IsWhitelisted(context.Context, int64, int64) (bool, error) {
	return false, errStoreDown
}
func (failingStore) AddWhitelist(context.Context, int64, int64) error    { return errStoreDown }
func (failingStore) RemoveWhitelist(context.Context, int64, int64) error { return errStoreDown }
func (failingStore) ListWhitelist(context.Context, int64) ([]int64, error) {
	return nil, errStoreDown
}
func (failingStore) IsBlacklisted(context.Context, int64, int64) (bool, error) {
	return false, errStoreDown
}
func (failingStore) AddBlacklist(context.Context, int64, int64) error    { return errStoreDown }
func (failingStore) RemoveBlacklist(context.Context, int64, int64) error { return errStoreDown }
func (failingStore) ListBlacklist(context.Context, int64) ([]int64, error) {
	return nil, errStoreDown
}
func (failingStore) Healthy(context.Context) error { return errStoreDown }
func (failingStore) Close() error                  { return nil }

func newDispatcher(st store.Store, actions moderation.Actions) *moderation.Dispatcher {
	return moderation.NewDispatcher(nil, st, nil, actions, rules.Defaults(), time.Second)
}

// deleteTierText scores well past the default delete threshold:
// 2 links, suspicious TLD, shortener, and spam keywords.
func deleteTierText(n int) string {
	return fmt.Sprintf("Free crypto airdrop! Claim now https://bit.ly/a and https://scam.xyz offer %d", n)
}

func TestProcessMessage_CleanMessageNoAction(t *testing.T) {
	t.Parallel()

	actions := newFakeActions()
	d := newDispatcher(store.NewMemStore(), actions)

	verdict := d.ProcessMessage(context.Background(), moderation.Message{
		ChatID: 1, UserID: 2, MessageID: 3,
		Text: "good morning, lovely weather today",
	})

	assert.Empty(t, verdict.Action)
	assert.Empty(t, verdict.Bypass)
	assert.Zero(t, verdict.Score.Total)
	assert.Empty(t, actions.deleted)
	assert.Empty(t, actions.sent)
	assert.Empty(t, actions.audits)
}

func TestProcessMessage_EscalationLadder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	actions := newFakeActions()
	st := store.NewMemStore()
	d := newDispatcher(st, actions)

	msg := func(n int) moderation.Message {
		return moderation.Message{ChatID: 10, UserID: 42, MessageID: 100 + n, Text: deleteTierText(n)}
	}

	// First offense: delete + warn, strike count 1.
	v := d.ProcessMessage(ctx, msg(1))
	assert.Equal(t, "DELETE+WARN", v.Action)
	assert.Equal(t, 1, v.Strikes)
	assert.Len(t, actions.deleted, 1)
	assert.Len(t, actions.sent, 1)
	assert.Empty(t, actions.banned)

	// Second offense: delete + 24h mute, strike count 2.
	v = d.ProcessMessage(ctx, msg(2))
	assert.Equal(t, "DELETE+MUTE", v.Action)
	assert.Equal(t, 2, v.Strikes)
	require.Len(t, actions.restricted, 1)
	assert.Equal(t, 24*time.Hour, actions.restricted[0])

	// Third offense: delete + ban, strike count 3.
	v = d.ProcessMessage(ctx, msg(3))
	assert.Equal(t, "DELETE+BAN", v.Action)
	assert.Equal(t, 3, v.Strikes)
	assert.Equal(t, []int64{42}, actions.banned)

	// Fourth offense: the ladder saturates at ban.
	v = d.ProcessMessage(ctx, msg(4))
	assert.Equal(t, "DELETE+BAN", v.Action)
	assert.Equal(t, 4, v.Strikes)
	assert.Len(t, actions.banned, 2)

	// Every step produced an audit record.
	require.Len(t, actions.audits, 4)
	assert.Equal(t, "DELETE+WARN", actions.audits[0].Action)
	assert.Equal(t, "DELETE+MUTE", actions.audits[1].Action)
	assert.Equal(t, "DELETE+BAN", actions.audits[2].Action)
	assert.Equal(t, "DELETE+BAN", actions.audits[3].Action)
}

func TestProcessMessage_WarnOnlyDoesNotEscalate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	actions := newFakeActions()
	st := store.NewMemStore()
	d := newDispatcher(st, actions)

	// Score 7: warn-worthy, below the delete threshold.
	v := d.ProcessMessage(ctx, moderation.Message{
		ChatID: 1, UserID: 2, MessageID: 3,
		Text: "Check out https://bit.ly/a and https://scam.xyz",
	})

	assert.Equal(t, "WARN", v.Action)
	assert.Equal(t, 7, v.Score.Total)
	assert.Empty(t, actions.deleted, "warn-only must not delete")
	assert.Len(t, actions.sent, 1)

	strikes, err := st.GetStrikes(ctx, 1, 2)
	require.NoError(t, err)
	assert.Zero(t, strikes, "warn-only events must not move the ladder")
}

func TestProcessMessage_BlacklistShortCircuit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	actions := newFakeActions()
	st := store.NewMemStore()
	require.NoError(t, st.AddBlacklist(ctx, 1, 666))
	d := newDispatcher(st, actions)

	v := d.ProcessMessage(ctx, moderation.Message{
		ChatID: 1, UserID: 666, MessageID: 9,
		Text: "hello, a perfectly innocent message",
	})

	assert.Equal(t, "BAN", v.Action)
	assert.Equal(t, []int{9}, actions.deleted)
	assert.Equal(t, []int64{666}, actions.banned)

	require.Len(t, actions.audits, 1)
	assert.Equal(t, 999, actions.audits[0].Score)
	assert.Equal(t, "Blacklisted user", actions.audits[0].Reasons)

	strikes, err := st.GetStrikes(ctx, 1, 666)
	require.NoError(t, err)
	assert.Zero(t, strikes, "blacklist ban leaves the strike counter untouched")
}

func TestProcessMessage_AdminAndWhitelistBypass(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	actions := newFakeActions()
	actions.admins[7] = true
	st := store.NewMemStore()
	require.NoError(t, st.AddWhitelist(ctx, 1, 8))
	d := newDispatcher(st, actions)

	v := d.ProcessMessage(ctx, moderation.Message{
		ChatID: 1, UserID: 7, MessageID: 1, Text: deleteTierText(0),
	})
	assert.Equal(t, "admin", v.Bypass)

	v = d.ProcessMessage(ctx, moderation.Message{
		ChatID: 1, UserID: 8, MessageID: 2, Text: deleteTierText(0),
	})
	assert.Equal(t, "whitelist", v.Bypass)

	assert.Empty(t, actions.deleted)
	assert.Empty(t, actions.sent)
	assert.Empty(t, actions.audits, "bypassed messages produce no audit entry")

	strikes, err := st.GetStrikes(ctx, 1, 7)
	require.NoError(t, err)
	assert.Zero(t, strikes)
}

func TestProcessMessage_DedupSuppression(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	actions := newFakeActions()
	st := store.NewMemStore()
	d := newDispatcher(st, actions)

	msg := moderation.Message{ChatID: 1, UserID: 2, MessageID: 3, Text: deleteTierText(1)}

	v := d.ProcessMessage(ctx, msg)
	assert.Equal(t, "DELETE+WARN", v.Action)

	// The retried identical message is suppressed within the window.
	msg.MessageID = 4
	v = d.ProcessMessage(ctx, msg)
	assert.Equal(t, "duplicate", v.Bypass)
	assert.Empty(t, v.Action)

	strikes, err := st.GetStrikes(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, strikes, "duplicate must not escalate a second time")
}

func TestProcessMessage_StrictModeAddsOne(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	actions := newFakeActions()
	st := store.NewMemStore()
	d := newDispatcher(st, actions)

	relaxed := d.ProcessMessage(ctx, moderation.Message{
		ChatID: 1, UserID: 2, MessageID: 3,
		Text: "Check out https://bit.ly/a and https://scam.xyz",
	})
	require.Equal(t, 7, relaxed.Score.Total)

	_, err := st.ToggleStrictMode(ctx, 2)
	require.NoError(t, err)

	// Different chat with strict mode on; same content scores one higher
	// and crosses the delete threshold.
	strict := d.ProcessMessage(ctx, moderation.Message{
		ChatID: 2, UserID: 2, MessageID: 3,
		Text: "Check out https://bit.ly/a and https://scam.xyz",
	})
	assert.Equal(t, 8, strict.Score.Total)
	assert.Equal(t, "DELETE+WARN", strict.Action)
}

func TestProcessMessage_StoreOutageFailsOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	actions := newFakeActions()
	d := newDispatcher(failingStore{}, actions)

	// Clean content flows through untouched.
	v := d.ProcessMessage(ctx, moderation.Message{
		ChatID: 1, UserID: 2, MessageID: 3, Text: "hello there",
	})
	assert.Empty(t, v.Action)
	assert.Empty(t, v.Bypass)

	// Scoring still runs; strikes degrade to last-known + 1, so the
	// first delete-tier offense warns.
	v = d.ProcessMessage(ctx, moderation.Message{
		ChatID: 1, UserID: 2, MessageID: 4, Text: deleteTierText(1),
	})
	assert.Equal(t, "DELETE+WARN", v.Action)
	assert.Equal(t, 1, v.Strikes)
	assert.Len(t, actions.deleted, 1)
	assert.Empty(t, actions.banned, "a store outage must never look like a blacklist hit")
}

func TestProcessMessage_EmptyContentSkipped(t *testing.T) {
	t.Parallel()

	actions := newFakeActions()
	d := newDispatcher(store.NewMemStore(), actions)

	v := d.ProcessMessage(context.Background(), moderation.Message{ChatID: 1, UserID: 2})
	assert.Equal(t, "empty", v.Bypass)
	assert.Empty(t, actions.audits)
}

func TestProcessMessage_CaptionIsScored(t *testing.T) {
	t.Parallel()

	actions := newFakeActions()
	d := newDispatcher(store.NewMemStore(), actions)

	v := d.ProcessMessage(context.Background(), moderation.Message{
		ChatID: 1, UserID: 2, MessageID: 3,
		Caption: "Check out https://bit.ly/a and https://scam.xyz",
	})
	assert.Equal(t, "WARN", v.Action)
}
