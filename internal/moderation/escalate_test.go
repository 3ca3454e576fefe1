package moderation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/castellanbot/castellan/internal/moderation"
)

func TestEscalate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		strikes int
		want    moderation.Action
	}{
		{name: "no strikes", strikes: 0, want: moderation.ActionNone},
		{name: "negative strikes", strikes: -1, want: moderation.ActionNone},
		{name: "first strike warns", strikes: 1, want: moderation.ActionWarn},
		{name: "second strike mutes", strikes: 2, want: moderation.ActionMute},
		{name: "third strike bans", strikes: 3, want: moderation.ActionBan},
		{name: "ladder saturates at ban", strikes: 10, want: moderation.ActionBan},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, moderation.Escalate(tc.strikes))
		})
	}
}

func TestActionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", moderation.ActionNone.String())
	assert.Equal(t, "warn", moderation.ActionWarn.String())
	assert.Equal(t, "mute", moderation.ActionMute.String())
	assert.Equal(t, "ban", moderation.ActionBan.String())
}
